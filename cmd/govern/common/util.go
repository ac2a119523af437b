package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"boscoin.io/govern/lib/errors"
)

// ErrorMessage prefers the short message of coded errors, followed by the
// values attached to it.
func ErrorMessage(err error) string {
	e, ok := err.(*errors.Error)
	if !ok {
		return err.Error()
	}

	if len(e.Data) < 1 {
		return e.Message
	}

	var details []string
	for _, k := range sortedKeys(e.Data) {
		details = append(details, fmt.Sprintf("%s=%v", k, e.Data[k]))
	}

	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(details, " "))
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Exit is replaced in tests.
var Exit = os.Exit

var Stderr io.Writer = os.Stderr

/**
 * Issue a message on Stderr then exit with an error code
 */
func PrintFlagsError(cmd *cobra.Command, flagName string, err error) {
	if err != nil {
		fmt.Fprintf(Stderr, "error: invalid '%s'; %s\n\n", flagName, ErrorMessage(err))
	}

	cmd.Help()

	Exit(1)
}

// PrintError reports a failed command without the usage; the command line
// itself was fine.
func PrintError(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(Stderr, "error: %s\n", ErrorMessage(err))
	}

	Exit(1)
}

type ListFlags []string

func (i *ListFlags) Type() string {
	return "list"
}

func (i *ListFlags) String() string {
	return strings.Join([]string(*i), " ")
}

func (i *ListFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

// GetDefaultStoragePath is "./db" under the working directory.
func GetDefaultStoragePath(c *cobra.Command) string {
	currentDirectory, err := os.Getwd()
	if err == nil {
		currentDirectory, err = filepath.Abs(currentDirectory)
	}
	if err != nil {
		PrintFlagsError(c, "--storage", err)
	}

	return fmt.Sprintf("file://%s/db", currentDirectory)
}
