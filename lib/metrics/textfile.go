package metrics

import (
	"bufio"
	"os"
	"path/filepath"

	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// WriteTextfile dumps every metric of `gatherer` in the prometheus text
// format, for the node exporter textfile collector. The file is replaced
// atomically.
func WriteTextfile(path string, gatherer stdprometheus.Gatherer) error {
	if gatherer == nil {
		gatherer = stdprometheus.DefaultGatherer
	}

	families, err := gatherer.Gather()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			tmp.Close()
			return err
		}
	}
	if err = w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
