package metrics

const (
	Namespace           = "govern"
	GovernanceSubsystem = "governance"
	TreasurySubsystem   = "treasury"
)

const (
	LabelVoteType = "vote_type"
	LabelCode     = "code"
	LabelCommand  = "command"
)
