package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Garden/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName            = "Go Garden"
	AppID              = "com.github.tartampluch.go-garden"
	KeyringService     = "com.github.tartampluch.go-garden"
	LocalhostBindAddr  = "127.0.0.1"
	LogFileName        = "app.log"
	SettingsFileName   = "config.yaml"
	CommandName        = "go-garden"
	DefaultSettingsDir = AppID
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagConfig   = "config"
	FlagDebug    = "debug"
	FlagNoColor  = "no-color"
	FlagJSON     = "json"
	FlagUser     = "user"
	FlagPassword = "password"
	FlagPort     = "port"
	FlagLanguage = "lang"

	FlagDescConfig   = "Path to the YAML settings file"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescNoColor  = "Disable colored output"
	FlagDescJSON     = "Print the report as JSON"
	FlagDescUser     = "Account name the password belongs to"
	FlagDescPassword = "Password to store (read from stdin when omitted)"
	FlagDescPort     = "Override the HTTP port from the settings file"
	FlagDescLanguage = "Override the label language from the settings file"

	MsgVersionOutput = "%s version %s (commit %s, built %s) %s/%s\n"
)

// -----------------------------------------------------------------------------
// CLI Commands
// -----------------------------------------------------------------------------

const (
	CmdServe       = "serve"
	CmdReport      = "report"
	CmdCredentials = "credentials"
	CmdSet         = "set"
	CmdVersion     = "version"

	CmdDescRoot        = "Relationship health evaluator for your contact list"
	CmdDescServe       = "Serve the nudge calendar and the JSON health report over HTTP"
	CmdDescReport      = "Print the health of every contact"
	CmdDescCredentials = "Manage the password of the remote contact source"
	CmdDescSet         = "Store the password in the OS keyring"
	CmdDescVersion     = "Print version information"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb   = "web"
	SourceModeLocal = "local"

	FormatVCard = "vcard"
	FormatJSON  = "json"
	FormatYAML  = "yaml"

	DefaultPort          = "18080"
	DefaultRefreshMin    = 60
	DefaultLanguage      = "en"
	DefaultLeapYear      = 2000 // Leap year fallback for dates like --02-29
	DefaultReminderValue = 1
	UIDSalt              = "go-garden-v1-" // Salt for deterministic UID generation
)

// SupportedLanguages defines the list of bundled label languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Relationship Health Policy Defaults
// -----------------------------------------------------------------------------

const (
	// DefaultFrequencyDays is the cadence used when a contact has none.
	DefaultFrequencyDays = 30

	// Frequency scheme bucket ceilings, in percent of the cadence.
	// At a 30 day cadence they resolve to 7, 21 and 45 days.
	DefaultBloomingPercent  = 25
	DefaultNourishedPercent = 70
	DefaultThirstyPercent   = 150

	// Importance scheme thresholds in days.
	DefaultHighThresholdDays   = 14
	DefaultMediumThresholdDays = 30
	DefaultLowThresholdDays    = 90
	DefaultNeglectBufferDays   = 30

	// DefaultMilestoneWindowDays is how far ahead a birthday becomes a nudge.
	DefaultMilestoneWindowDays = 7

	// NeverContactedDays is the sentinel returned for contacts with no last contact.
	NeverContactedDays = 999

	// NoMilestone marks the absence of an upcoming birthday in a StatusLabel.
	NoMilestone = -1

	// Upper bounds of cadences, thresholds and bucket percentages.
	// Larger values are treated as out of range.
	MaxFrequencyDays = 36500
	MaxPolicyPercent = 10000

	HoursPerDay = 24
	PercentBase = 100
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTimePrefix     = "T" // Hours and minutes need the time designator: PT2H.
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Presentation Tokens
// -----------------------------------------------------------------------------

const (
	ColorBlooming  = "emerald"
	ColorNourished = "green"
	ColorThirsty   = "amber"
	ColorFading    = "rose"

	ColorNurtured  = "green"
	ColorDrifting  = "amber"
	ColorNeglected = "red"
	ColorNew       = "blue"
	ColorMilestone = "purple"
)

// -----------------------------------------------------------------------------
// Normalization: Record Field Names (fallback chains, first match wins)
// -----------------------------------------------------------------------------

var (
	FieldsID            = []string{"id", "contact_id", "uid"}
	FieldsName          = []string{"name", "full_name", "display_name"}
	FieldsLastContact   = []string{"last_contact_date", "last_interaction_date", "last_contact", "lastContactDate"}
	FieldsFrequencyDays = []string{"target_frequency_days", "targetFrequencyDays", "frequency_days", "cadence_days"}
	FieldsImportance    = []string{"importance", "priority"}
	FieldsBirthday      = []string{"birthday", "birth_date", "dob"}
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyStatusBlooming  = "status_blooming"
	TKeyStatusNourished = "status_nourished"
	TKeyStatusThirsty   = "status_thirsty"
	TKeyStatusFading    = "status_fading"

	TKeyStandingNurtured  = "standing_nurtured"
	TKeyStandingDrifting  = "standing_drifting"  // Requires Days
	TKeyStandingNeglected = "standing_neglected" // Requires Days
	TKeyStandingNew       = "standing_new"
	TKeyMilestoneToday    = "milestone_today"
	TKeyMilestoneUpcoming = "milestone_upcoming" // Requires Days

	TKeyEvtReachOut = "event_reach_out" // Requires Name
	TKeyEvtBirthday = "event_birthday"  // Requires Name

	TKeyColName     = "col_name"
	TKeyColStatus   = "col_status"
	TKeyColDays     = "col_days"
	TKeyColStanding = "col_standing"
	TKeyColDue      = "col_due"
	TKeyGarden      = "garden_summary"

	// Template data fields used by messages.
	TemplateKeyDays      = "Days"
	TemplateKeyName      = "Name"
	TemplateKeyTotal     = "Total"
	TemplateKeyBlooming  = "Blooming"
	TemplateKeyNourished = "Nourished"
	TemplateKeyThirsty   = "Thirsty"
	TemplateKeyFading    = "Fading"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Garden//Engine//EN"
	ICalCalName   = "Relationship Garden"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gogarden"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	VCardBDAY          = "BDAY"
	VCardFN            = "FN"
	VCardUID           = "UID"
	VCardLastContact   = "X-LAST-CONTACT"
	VCardFrequencyDays = "X-TARGET-FREQUENCY-DAYS"
	VCardImportance    = "X-IMPORTANCE"

	EventKindReachOut = "reach-out"
	EventKindBirthday = "birthday"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing BDAY and last-contact fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatSpaced    = "2006-01-02 15:04:05"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	DateFormatMonthDay  = "01-02"
	DateFormatDisplay   = "2006-01-02"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%s@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
	ExtJSON  = ".json"
	ExtYAML  = ".yaml"
	ExtYML   = ".yml"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteCalendar       = "/calendar.ics"
	RouteReport         = "/report.json"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrWebURLEmpty     = "configuration error: web URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrModeUnsupport   = "configuration error: unsupported source mode"
	ErrFormatUnsupport = "configuration error: unsupported source format"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrPolicyRange     = "policy values must not be negative"
	ErrPolicyOrder     = "policy bucket percentages must be increasing"
	ErrPolicyLimit     = "policy values exceed the supported range"
	ErrRefreshRange    = "refresh interval must not be negative"
	ErrReminderUnit    = "unsupported reminder unit"
	ErrReminderDir     = "unsupported reminder direction"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrSourceRead      = "failed to read contact source"
	ErrSourceDecode    = "failed to decode contact records"
	ErrResponseSize    = "response exceeds the maximum allowed size"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrReportEncode    = "failed to encode health report"
	ErrDateParse       = "unable to parse date"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrConfigDir       = "could not determine user config dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrSettingsRead    = "failed to read settings file"
	ErrSettingsParse   = "failed to parse settings file"
	ErrSettingsInvalid = "invalid settings"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrCredentialSave  = "failed to save credentials to keyring"
	ErrCredentialRead  = "failed to read password"
	ErrUserRequired    = "account name is required"
	ErrRequestCreate   = "failed to create request"
	ErrNetwork         = "network error during fetch"
	ErrHTTPStatus      = "server returned unexpected status"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Garden initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackName = "Unknown"

	FallbackLabelBlooming  = "In full bloom"
	FallbackLabelNourished = "Well tended"
	FallbackLabelThirsty   = "Getting thirsty, reach out soon"
	FallbackLabelFading    = "Fading, reconnect now"

	FallbackLabelNurtured       = "Up to date"
	FallbackLabelDrifting       = "Drifting: %d days since last contact"
	FallbackLabelNeglected      = "Neglected: %d days since last contact"
	FallbackLabelNew            = "Initiate a first reach-out"
	FallbackLabelBirthdayToday  = "Birthday today, send your wishes"
	FallbackLabelBirthdaySoon   = "Birthday in %d days"
	FallbackSummaryReachOut     = "Reach out to %s"
	FallbackSummaryBirthday     = "Birthday: %s"
	FallbackGardenSummary       = "%d contacts: %d blooming, %d nourished, %d thirsty, %d fading"
	FallbackColumnName          = "Name"
	FallbackColumnStatus        = "Status"
	FallbackColumnDays          = "Days"
	FallbackColumnStanding      = "Standing"
	FallbackColumnDue           = "Due"
	StubVCalendar               = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
	MsgPasswordPrompt           = "Password: "
	MsgCredentialSaved          = "Credentials saved"
	MsgSyncSuccess              = "Synchronization completed successfully."
	MsgSyncStarted              = "Synchronization started..."
	MsgSyncFailed               = "Synchronization failed. Check logs."
	MsgSyncReq                  = "Sync requested"
	MsgWorkerStart              = "Background worker started"
	MsgWorkerStop               = "Worker stopping due to context cancellation"
	MsgUpdateSync               = "Updating sync interval"
	MsgAppStop                  = "Application stopped gracefully"
	MsgSkippedCard              = "Skipping malformed vCard"
	MsgSkippedDate              = "Skipping invalid date format"
	MsgSkippedRecord            = "Skipping malformed contact record"
	MsgGenSuccess               = "Garden evaluation successful"
	MsgAppStarting              = "Starting application"
	MsgServerListen             = "HTTP server listening"
	MsgServerStop               = "Shutting down HTTP server..."
	MsgCacheUpdated             = "Feed cache updated"
	MsgLocaleSkip               = "Skipping non-locale file"
	MsgLocaleBadName            = "Skipping malformed locale filename"
	MsgLocaleLoaded             = "Locale loaded successfully"
	MsgTransMissing             = "Missing translation key"
	MsgPassFail                 = "Password retrieval failed (might be empty)"
	MsgLogWarning               = "Warning: %s at %s: %v\n"
	MsgContactNeedsCare         = "Contact needs attention"
	MsgSettingsDefault          = "Settings file not found, using defaults"
	MsgSettingsLoaded           = "Settings loaded"
	MsgManualRefresh            = "Manual refresh signal received"
	MsgCtxCancel                = "Context cancelled, shutting down"
	MsgSyncFinished             = "Sync finished"
	MsgFetchStart               = "Initiating contact download"
	MsgFetchBadStatus           = "Server returned error status"
	MsgFetchDownloading         = "Contacts downloading"
	ReportNeverContactedDisplay = "-"
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyFormat    = "format"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_records"
	LogKeyEvaluated = "contacts_evaluated"
	LogKeyNeedCare  = "contacts_need_care"
	LogKeyMilestone = "milestones"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyReportTag = "report_etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyContactID = "contact_id"
	LogKeyStanding  = "standing"
	LogKeyDays      = "days"
	LogKeyDuration  = "duration_ms"
	LogKeyPath      = "path"
	LogKeyLength    = "content_length"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyBuiltAt = "built_at"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine      = "engine"
	CompServer      = "server"
	CompFetcher     = "fetcher"
	CompWorker      = "worker"
	CompMain        = "main"
	CompI18n        = "i18n"
	CompSettings    = "settings"
	CompCredentials = "credentials"
)
