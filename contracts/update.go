package contracts

type UpdateState int

const (
	NoLocalManifest UpdateState = iota
	LocalPresentNoUpdateNeeded
	LocalPresentUpdateNeeded
	Updating
	Committed
	RolledBack
)

func (this UpdateState) String() string {
	switch this {
	case NoLocalManifest:
		return "no-local-manifest"
	case LocalPresentNoUpdateNeeded:
		return "up-to-date"
	case LocalPresentUpdateNeeded:
		return "update-needed"
	case Updating:
		return "updating"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}
