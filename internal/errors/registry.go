package errors

// Registered error codes.
const (
	CodeModelNotFound        = "E100"
	CodeBindFailure          = "E101"
	CodeModelFetchFailed     = "E102"
	CodeAssetMissing         = "E200"
	CodeUnknownAssetType     = "E201"
	CodeRequestHandlingFault = "E300"
	CodeConfigInvalid        = "E400"
	CodeConfigNotFound       = "E401"
	CodeInvalidPort          = "E402"
)

// Sentinels for errors.Is comparisons. They match any error with the same code.
var (
	ErrModelNotFound        = &Error{Code: CodeModelNotFound}
	ErrBindFailure          = &Error{Code: CodeBindFailure}
	ErrModelFetchFailed     = &Error{Code: CodeModelFetchFailed}
	ErrAssetMissing         = &Error{Code: CodeAssetMissing}
	ErrUnknownAssetType     = &Error{Code: CodeUnknownAssetType}
	ErrRequestHandlingFault = &Error{Code: CodeRequestHandlingFault}
	ErrConfigInvalid        = &Error{Code: CodeConfigInvalid}
	ErrConfigNotFound       = &Error{Code: CodeConfigNotFound}
	ErrInvalidPort          = &Error{Code: CodeInvalidPort}
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Lifecycle Errors (E100-E199)
	// ============================================

	CodeModelNotFound: {
		Category: CategoryLifecycle,
		Message:  "Model file not found",
		Detail:   "The model file passed to serve does not exist. No server was started.",
	},
	CodeBindFailure: {
		Category: CategoryLifecycle,
		Message:  "Cannot bind server address",
		Detail:   "The listener could not be bound to the requested host and port.",
	},
	CodeModelFetchFailed: {
		Category: CategoryLifecycle,
		Message:  "Model fetch failed",
		Detail:   "The remote model object could not be downloaded.",
	},

	// ============================================
	// Asset Errors (E200-E299)
	// ============================================

	CodeAssetMissing: {
		Category: CategoryAsset,
		Message:  "Viewer asset missing",
		Detail:   "A file the viewer needs is not present in the asset directory.",
	},
	CodeUnknownAssetType: {
		Category: CategoryAsset,
		Message:  "Unknown asset type",
		Detail:   "The asset extension has no registered content type.",
	},

	// ============================================
	// Request Errors (E300-E399)
	// ============================================

	CodeRequestHandlingFault: {
		Category: CategoryRequest,
		Message:  "Request handling failed",
		Detail:   "An error occurred while serving a single connection. The server keeps running.",
	},

	// ============================================
	// Config Errors (E400-E499)
	// ============================================

	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be parsed.",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	CodeInvalidPort: {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "Port must be between 0 and 65535.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
