package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/playwright-community/playwright-go"
	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
)

func RenderPageTool() protocol.Tool {
	return protocol.Tool{
		Name: "render_page",
		Description: "" +
			"Renders a URL in a real, JavaScript-capable browser and returns its fully rendered content as " +
			"markdown. Use this instead of html_2_markdown when the page's content is built client-side " +
			"(single-page apps, infinite-scroll feeds) and a plain HTTP GET would only return an empty shell.",
		InputSchema: objectSchema(map[string]any{
			"url":     map[string]any{"type": "string", "description": "The URL to render"},
			"timeout": map[string]any{"type": "integer", "description": "Navigation timeout in milliseconds, default 30000"},
		}, []string{"url"}),
		Annotations: &protocol.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: true},
	}
}

type renderPageArgs struct {
	URL     string `json:"url"`
	Timeout int    `json:"timeout"`
}

func HandleRenderPage(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, *protocol.ProtocolError) {
	var a renderPageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, protocol.NewProtocolError(protocol.ErrInvalidParams, "invalid arguments: "+err.Error())
	}
	if a.URL == "" {
		return errResult("url is required"), nil
	}
	if a.Timeout <= 0 {
		a.Timeout = 30000
	}

	html, err := renderWithBrowser(a.URL, float64(a.Timeout))
	if err != nil {
		return errResult("failed to render page: %v", err), nil
	}

	markdown, err := htmltomarkdown.ConvertString(html, converter.WithDomain(a.URL))
	if err != nil {
		return errResult("failed to convert rendered page to markdown: %v", err), nil
	}
	const maxLength = 10000
	if len(markdown) > maxLength {
		markdown = markdown[:maxLength] + "\n\n... (content truncated due to size)"
	}

	r, perr := jsonResult(map[string]any{"markdown": strings.TrimSpace(markdown), "url": a.URL})
	return r, perr
}

// renderWithBrowser drives a headless Chromium instance through
// playwright-go to obtain a page's post-JavaScript DOM. A fresh browser is
// launched per call rather than pooled, since render_page is an occasional
// tool rather than a hot path.
func renderWithBrowser(url string, timeoutMs float64) (string, error) {
	pw, err := playwright.Run()
	if err != nil {
		return "", fmt.Errorf("failed to start playwright: %w", err)
	}
	defer func() {
		if err := pw.Stop(); err != nil {
			logger.Warn("render_page: failed to stop playwright", err)
		}
	}()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(timeoutMs),
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return "", fmt.Errorf("failed to navigate: %w", err)
	}

	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read rendered content: %w", err)
	}
	return content, nil
}
