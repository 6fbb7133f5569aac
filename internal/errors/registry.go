package errors

// Registered error codes.
const (
	CodeUnknownRoute   = "E101"
	CodeDuplicateRoute = "E102"
	CodeInvalidPattern = "E103"
	CodeEmptyPathname  = "E104"
	CodeEmptyRouteName = "E105"

	CodeInvalidTable     = "E201"
	CodeSourceUnreadable = "E202"
	CodeInvalidConfig    = "E203"

	CodeInvalidLocation = "E301"
	CodeInvalidMessage  = "E302"

	CodeInvalidArgument = "E401"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Route table errors (E101-E199)
	CodeUnknownRoute: {
		Category: CategoryRoute,
		Message:  "Unknown route",
		Detail:   "The route name is not declared in the route table. Route names are fixed when the controller is created.",
	},
	CodeDuplicateRoute: {
		Category: CategoryRoute,
		Message:  "Duplicate route",
		Detail:   "Each route name may appear only once in a route table.",
	},
	CodeInvalidPattern: {
		Category: CategoryRoute,
		Message:  "Invalid route pattern",
		Detail:   "The pathname, search or hash template could not be compiled.",
	},
	CodeEmptyPathname: {
		Category: CategoryRoute,
		Message:  "Missing pathname",
		Detail:   "Every route needs a pathname template.",
	},
	CodeEmptyRouteName: {
		Category: CategoryRoute,
		Message:  "Empty route name",
		Detail:   "Route names must be non-empty. The empty name stands for \"no current route\".",
	},

	// Config errors (E201-E299)
	CodeInvalidTable: {
		Category: CategoryConfig,
		Message:  "Invalid route table",
		Detail:   "The route table file must be a mapping from route name to route definition.",
	},
	CodeSourceUnreadable: {
		Category: CategoryConfig,
		Message:  "Route table unreadable",
		Detail:   "The route table could not be read from its source.",
	},
	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The histroute.json configuration file is malformed.",
	},

	// Bridge errors (E301-E399)
	CodeInvalidLocation: {
		Category: CategoryBridge,
		Message:  "Invalid location",
		Detail:   "The browser reported a location that is malformed or on another origin.",
	},
	CodeInvalidMessage: {
		Category: CategoryBridge,
		Message:  "Invalid message",
		Detail:   "The websocket message could not be decoded or has an unknown type.",
	},

	// CLI errors (E401-E499)
	CodeInvalidArgument: {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command line argument could not be parsed.",
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
