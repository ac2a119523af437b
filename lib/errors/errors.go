package errors

// storage
var (
	StorageRecordDoesNotExist  = NewError(100, "record does not exist")
	StorageRecordAlreadyExists = NewError(101, "record already exists in storage")
	StorageCoreError           = NewError(102, "storage error")
	InvalidStorageConfig       = NewError(103, "invalid storage config")
	StorageTransactionOpened   = NewError(104, "storage transaction is already opened")
	StorageNotTransaction      = NewError(105, "storage is not in a transaction")
)

// ledger
var (
	AccountNotFound       = NewError(150, "account not found")
	InsufficientBalance   = NewError(151, "insufficient balance")
	MaximumBalanceReached = NewError(152, "monetary amount would be greater than the maximum")
	InvalidAmount         = NewError(153, "invalid amount")
	InvalidAddress        = NewError(154, "invalid address")
	SameSourceAndTarget   = NewError(155, "source and target are the same")
)

// governance
var (
	NotAnInvestor     = NewError(200, "caller does not hold governance tokens")
	InvalidProposal   = NewError(201, "invalid proposal")
	ProposalNotFound  = NewError(202, "proposal not found")
	AlreadyVoted      = NewError(203, "already voted")
	VotingClosed      = NewError(204, "voting period has ended")
	QuorumNotMet      = NewError(205, "quorum not met")
	AlreadyFinalized  = NewError(206, "proposal already finalized")
	TransferFailed    = NewError(207, "treasury transfer failed")
	InvalidVoteType   = NewError(208, "invalid vote type")
	InvalidQuorum     = NewError(209, "invalid quorum")
	InvalidConfig     = NewError(210, "invalid governance config")
	InvalidEventChain = NewError(211, "governance event chain is broken")
	VoteNotFound      = NewError(212, "vote not found")
)

// genesis
var (
	GenesisAlreadyApplied = NewError(300, "genesis is already applied")
	GenesisNotApplied     = NewError(301, "genesis is not applied")
)
