package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009

	// Lottery phase codes
	WrongPhase         Code = 200001
	InvalidTransition  Code = 200002
	TimelockNotElapsed Code = 200003

	// Lottery authorization and configuration codes
	NotAuthorized         Code = 300001
	AdministratorNotFound Code = 300002
	CurrencyNotFound      Code = 300003
	PriceNotFound         Code = 300004
	StateNotFound         Code = 300005

	// Ticket and raffle codes
	TicketNotFound Code = 400001
	AlreadyDrawn   Code = 400002
	NoParticipants Code = 400003

	// Reserve codes
	FundsInReserve   Code = 500001
	PositionNotFound Code = 500002
)
