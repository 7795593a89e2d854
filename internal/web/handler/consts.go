package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the root of a sub router.
	RouterRootPath = "/"

	// ErrNilACDFatalLogMsg is used if app or deps var pointer is nil.
	ErrNilACDFatalLogMsg = "app or deps is nil"

	// Notice types, used as alert classes in the templates.
	NoticeSuccess = "success"
	NoticeError   = "danger"
	NoticeInfo    = "info"
)
