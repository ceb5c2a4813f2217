package tool

// Builtin tool names. The executor dispatches on these with an exhaustive
// switch, so adding a tool means touching both this catalog and the
// executor — a compile-visible change, not a silent registry miss.
const (
	ShellExecute     = "shell_execute"
	FileRead         = "file_read"
	FileWrite        = "file_write"
	FileList         = "file_list"
	ProcessList      = "process_list"
	SystemInfo       = "system_info"
	BrowserOpen      = "browser_open"
	WebSearch        = "web_search"
	MapOpen          = "map_open"
	YouTubeSearch    = "youtube_search"
	SQLConnect       = "sql_connect"
	SQLQuery         = "sql_query"
	SQLListTables    = "sql_list_tables"
	SQLDescribeTable = "sql_describe_table"
	SQLDisconnect    = "sql_disconnect"
)

// Builtins returns the full builtin catalog.
func Builtins() []Definition {
	return []Definition{
		{
			Name:        ShellExecute,
			Description: "Runs a shell command on the host. Use it for system operations.",
			Params: []Param{
				{Name: "command", Type: ParamString, Description: "The shell command to run", Required: true},
			},
			Dangerous: true,
		},
		{
			Name:        FileRead,
			Description: "Reads the content of a file.",
			Params: []Param{
				{Name: "path", Type: ParamString, Description: "Path of the file to read", Required: true},
			},
		},
		{
			Name:        FileWrite,
			Description: "Writes content to a file (creates or overwrites).",
			Params: []Param{
				{Name: "path", Type: ParamString, Description: "Path of the file to write", Required: true},
				{Name: "content", Type: ParamString, Description: "Content to write", Required: true},
			},
			Dangerous: true,
		},
		{
			Name:        FileList,
			Description: "Lists files and directories under a path.",
			Params: []Param{
				{Name: "path", Type: ParamString, Description: "Directory to list", Required: true},
				{Name: "recursive", Type: ParamBoolean, Description: "Walk subdirectories (depth limited)", Required: false},
			},
		},
		{
			Name:        ProcessList,
			Description: "Lists active processes on the host.",
		},
		{
			Name:        SystemInfo,
			Description: "Reports host information (OS, CPU, memory).",
		},
		{
			Name:        BrowserOpen,
			Description: "Opens a URL in the default browser.",
			Params: []Param{
				{Name: "url", Type: ParamString, Description: "Full URL to open", Required: true},
			},
		},
		{
			Name:        WebSearch,
			Description: "Runs a Google web search.",
			Params: []Param{
				{Name: "query", Type: ParamString, Description: "The search query", Required: true},
			},
		},
		{
			Name:        MapOpen,
			Description: "Opens Google Maps for a location or route.",
			Params: []Param{
				{Name: "location", Type: ParamString, Description: "Place name, address or coordinates", Required: true},
				{Name: "mode", Type: ParamString, Description: "'search' (default) or 'directions'", Required: false},
			},
		},
		{
			Name:        YouTubeSearch,
			Description: "Searches for videos on YouTube.",
			Params: []Param{
				{Name: "query", Type: ParamString, Description: "The YouTube search query", Required: true},
			},
		},
		{
			Name:        SQLConnect,
			Description: "Connects to a SQL Server database.",
			Params: []Param{
				{Name: "server", Type: ParamString, Description: "Server name or IP", Required: true},
				{Name: "database", Type: ParamString, Description: "Database name", Required: true},
				{Name: "auth_method", Type: ParamString, Description: "'windows' (integrated) or 'sql'", Required: true},
				{Name: "username", Type: ParamString, Description: "SQL login username", Required: false},
				{Name: "password", Type: ParamString, Description: "SQL login password", Required: false},
			},
		},
		{
			Name:        SQLQuery,
			Description: "Runs a SELECT query against a connected database (READ ONLY).",
			Params: []Param{
				{Name: "connection_id", Type: ParamString, Description: "Connection id from sql_connect", Required: true},
				{Name: "query", Type: ParamString, Description: "The SELECT statement to run", Required: true},
			},
		},
		{
			Name:        SQLListTables,
			Description: "Lists all tables and views in the connected database.",
			Params: []Param{
				{Name: "connection_id", Type: ParamString, Description: "Connection id from sql_connect", Required: true},
			},
		},
		{
			Name:        SQLDescribeTable,
			Description: "Shows the column structure of a table.",
			Params: []Param{
				{Name: "connection_id", Type: ParamString, Description: "Connection id from sql_connect", Required: true},
				{Name: "schema", Type: ParamString, Description: "Table schema (e.g. dbo)", Required: true},
				{Name: "table", Type: ParamString, Description: "Table name", Required: true},
			},
		},
		{
			Name:        SQLDisconnect,
			Description: "Closes a SQL Server connection.",
			Params: []Param{
				{Name: "connection_id", Type: ParamString, Description: "Connection id to close", Required: true},
			},
		},
	}
}

// RegisterBuiltins registers the full catalog into r.
func RegisterBuiltins(r *Registry) error {
	for _, def := range Builtins() {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}
