package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"draftdeck/internal/domain"
	"draftdeck/internal/domain/repositories"
)

// Provider identifies the chat service a share link belongs to.
type Provider string

const (
	ProviderChatGPT      Provider = "chatgpt"
	ProviderClaude       Provider = "claude"
	ProviderGrok         Provider = "grok"
	ProviderBranchPrompt Provider = "branchprompt"
)

// shareHosts maps a share-link host to its provider. Path prefixes are
// checked separately because some hosts serve more than shares.
var shareHosts = map[string]Provider{
	"chatgpt.com":      ProviderChatGPT,
	"chat.openai.com":  ProviderChatGPT,
	"claude.ai":        ProviderClaude,
	"grok.com":         ProviderGrok,
	"x.ai":             ProviderGrok,
	"branchprompt.com": ProviderBranchPrompt,
}

// Importer turns a public share link into an imported conversation: it
// fetches the shared page, extracts the transcript as markdown, and hands
// the result to the backend import endpoint.
type Importer struct {
	imports   repositories.ImportRepository
	http      *http.Client
	converter *md.Converter
	logger    *slog.Logger
}

// New creates an importer.
func New(imports repositories.ImportRepository, logger *slog.Logger) *Importer {
	return &Importer{
		imports:   imports,
		http:      &http.Client{Timeout: 30 * time.Second},
		converter: md.NewConverter("", true, nil),
		logger:    logger,
	}
}

// Request is one import attempt.
type Request struct {
	SourceURL string `json:"source_url"`
	Overwrite bool   `json:"overwrite"`
}

// Validate checks the import request.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceURL, validation.Required, is.URL),
	)
}

// Import runs the full flow. URL-collision conflicts come back as a
// *domain.ImportConflictError so the handler can relay the conflict list.
func (i *Importer) Import(ctx context.Context, req Request) (*repositories.ImportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	provider, err := DetectProvider(req.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	transcript, err := i.fetchTranscript(ctx, req.SourceURL)
	if err != nil {
		return nil, err
	}

	result, err := i.imports.ImportConversation(ctx, &repositories.ImportRequest{
		SourceURL:  req.SourceURL,
		Provider:   string(provider),
		Transcript: transcript,
		Overwrite:  req.Overwrite,
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("conversation imported",
		"provider", provider,
		"conversation_id", result.ConversationID,
	)
	return result, nil
}

// DetectProvider classifies a share URL by host. Unknown hosts are
// rejected rather than fetched blindly.
func DetectProvider(rawURL string) (Provider, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid share URL: %w", err)
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("share URL must use https, got %q", u.Scheme)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	provider, ok := shareHosts[host]
	if !ok {
		return "", fmt.Errorf("unsupported share host %q", host)
	}
	return provider, nil
}

// fetchTranscript downloads the shared page and extracts the conversation
// as markdown.
func (i *Importer) fetchTranscript(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build share request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := i.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch share page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("share page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse share page: %w", err)
	}

	return i.extractTranscript(doc, sourceURL)
}

// extractTranscript pulls the transcript region out of the page and
// converts it to markdown. Share pages differ per provider but all render
// the conversation in <main> (or <article> as a fallback); scripts and
// styles are stripped before conversion.
func (i *Importer) extractTranscript(doc *goquery.Document, sourceURL string) (string, error) {
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	region := doc.Find("main").First()
	if region.Length() == 0 {
		region = doc.Find("article").First()
	}
	if region.Length() == 0 {
		region = doc.Find("body").First()
	}

	html, err := region.Html()
	if err != nil {
		return "", fmt.Errorf("extract transcript region: %w", err)
	}

	markdown, err := i.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert transcript to markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", fmt.Errorf("share page at %s contained no transcript content", sourceURL)
	}
	return markdown, nil
}
