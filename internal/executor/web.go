package executor

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/matehq/mate/internal/tool"
)

func (e *Executor) browserOpen(call tool.Call) tool.Result {
	rawURL := stringParam(call.Params, "url")

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return tool.Fail(call.Tool, tool.KindValidation,
			fmt.Errorf("executor: url must be http or https: %q", rawURL))
	}
	return e.handOffToBrowser(call.Tool, rawURL)
}

func (e *Executor) webSearch(call tool.Call) tool.Result {
	query := stringParam(call.Params, "query")
	target := "https://www.google.com/search?q=" + url.QueryEscape(query)
	return e.handOffToBrowser(call.Tool, target)
}

func (e *Executor) mapOpen(call tool.Call) tool.Result {
	location := stringParam(call.Params, "location")
	mode := stringParam(call.Params, "mode")

	var target string
	switch mode {
	case "directions":
		target = "https://www.google.com/maps/dir/?api=1&destination=" + url.QueryEscape(location)
	case "", "search":
		target = "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(location)
	default:
		return tool.Fail(call.Tool, tool.KindValidation,
			fmt.Errorf("executor: mode must be \"search\" or \"directions\", got %q", mode))
	}
	return e.handOffToBrowser(call.Tool, target)
}

func (e *Executor) youtubeSearch(call tool.Call) tool.Result {
	query := stringParam(call.Params, "query")
	target := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
	return e.handOffToBrowser(call.Tool, target)
}

// handOffToBrowser delegates the URL to the OS. Success means the handoff
// was accepted; what the browser does afterwards is outside the engine's
// observation, so the result records a side effect rather than an output.
func (e *Executor) handOffToBrowser(toolName, target string) tool.Result {
	if err := e.openURL(target); err != nil {
		return tool.Fail(toolName, tool.KindExecution, fmt.Errorf("executor: open %s: %w", target, err))
	}
	res := tool.Ok(toolName, "opened in browser: "+target)
	res.SideEffect = "opened URL " + target
	return res
}

// openInBrowser is the production OS handoff.
func openInBrowser(rawURL string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	default:
		return exec.Command("xdg-open", rawURL).Start()
	}
}
