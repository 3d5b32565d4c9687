package constants

import "time"

// Booking group size, organizer excluded.
const (
	MinBookingMembers = 3
	MaxBookingMembers = 6
)

// DateLayout is the calendar-day format used for booking dates.
const DateLayout = "2006-01-02"

// DisplayDateLayout mirrors the short locale date used in notice text.
const DisplayDateLayout = "1/2/2006"

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultTimeout        = 30 * time.Second
	ShutdownTimeout       = 15 * time.Second
)

const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

const (
	HeaderParticipantID = "X-Participant-ID"
	HeaderRequestID     = "X-Request-ID"
	ContextActor        = "actor"
	ContextRequestID    = "request_id"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

const (
	RedisKeyDisplayNames = "directory:display_names"
	DisplayNameCacheTTL  = 24 * time.Hour
)

const (
	TaskTypeDeliverNotice = "booking:notice:deliver"
	QueueNotices          = "notices"
	NoticeMaxRetry        = 5
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)
