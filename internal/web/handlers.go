package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AlexGustafsson/lyrebird/internal/generator"
	"github.com/AlexGustafsson/lyrebird/internal/lyrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

// maxBodySize limits request bodies. Forms are small, downloads carry the
// generated text back.
const maxBodySize = 1 << 20

// CredentialHeader carries a user-supplied API key for API requests.
const CredentialHeader = "X-API-Key"

// Handler serves the web UI and API.
type Handler struct {
	generator *generator.Generator
}

func NewHandler(generator *generator.Generator) *Handler {
	return &Handler{generator: generator}
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Genre     string
	Theme     string
	Mood      string
	Languages []option
	Structure []option
	MaxLength int

	Error string
	// DemoAvailable is true when generations without a key use the demo.
	DemoAvailable bool

	Result      *lyrics.GenerationResult
	Display     template.HTML
	StylePrompt string
	Lyrics      string
	// Text is the downloadable plain text.
	Text        string
	Language    string
	Filename    string
}

func newPageData(genre, theme, mood, language, structure string) pageData {
	data := pageData{
		Genre:     genre,
		Theme:     theme,
		Mood:      mood,
		MaxLength: lyrics.MaxFieldLength,
	}

	selectedLanguage, _ := lyrics.ParseLanguage(language)
	for _, l := range lyrics.Languages {
		data.Languages = append(data.Languages, option{Value: string(l), Label: l.Label(), Selected: l == selectedLanguage})
	}

	selectedStructure, _ := lyrics.ParseStructure(structure)
	for _, s := range lyrics.Structures {
		data.Structure = append(data.Structure, option{Value: string(s), Label: s.Label(), Selected: s == selectedStructure})
	}

	return data
}

// Index serves the form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data := newPageData("", "", "", "", "")
	data.DemoAvailable = h.generator.DemoAvailable()
	h.render(w, http.StatusOK, data)
}

// Generate handles a form submission and serves the form with the result.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	genre := r.PostForm.Get("genre")
	theme := r.PostForm.Get("theme")
	mood := r.PostForm.Get("mood")
	language := r.PostForm.Get("language")
	structure := r.PostForm.Get("structure")

	data := newPageData(genre, theme, mood, language, structure)
	data.DemoAvailable = h.generator.DemoAvailable()

	request, err := lyrics.NewRequest(genre, theme, mood, language, structure)
	if err != nil {
		data.Error = generator.UserMessage(err)
		h.render(w, generator.StatusCode(err), data)
		return
	}

	// The key is used for this request only, never stored or echoed back
	result, err := h.generator.Generate(r.Context(), request, r.PostForm.Get("apiKey"))
	if err != nil {
		data.Error = generator.UserMessage(err)
		h.render(w, generator.StatusCode(err), data)
		return
	}

	data.Result = result
	data.Display = template.HTML(result.DisplayText)
	data.StylePrompt, data.Lyrics = lyrics.Split(result.RawText)
	data.Text = lyrics.RenderWith(lyrics.PlainStyle, result.RawText)
	data.Language = string(request.Language.OrDefault())
	data.Filename = lyrics.Filename(request.Language)
	h.render(w, http.StatusOK, data)
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	var builder strings.Builder
	if err := templates.ExecuteTemplate(&builder, "index.html", data); err != nil {
		slog.Error("Failed to render template", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, builder.String())
}

// Download responds with the posted text as a file attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	text := r.PostForm.Get("text")
	if strings.TrimSpace(text) == "" {
		http.Error(w, "Nothing to download", http.StatusBadRequest)
		return
	}

	language, err := lyrics.ParseLanguage(r.PostForm.Get("language"))
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, lyrics.Filename(language)))
	io.WriteString(w, text)
}

type generateRequest struct {
	Genre     string `json:"genre"`
	Theme     string `json:"theme"`
	Mood      string `json:"mood"`
	Language  string `json:"language"`
	Structure string `json:"structure"`
}

type generateResponse struct {
	ID          string `json:"id"`
	RawText     string `json:"rawText"`
	DisplayText string `json:"displayText"`
	StylePrompt string `json:"stylePrompt"`
	Lyrics      string `json:"lyrics"`
	Demo        bool   `json:"demo"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	DurationMS  int64  `json:"durationMs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GenerateJSON is the JSON API equivalent of Generate.
func (h *Handler) GenerateJSON(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return
	}

	request, err := lyrics.NewRequest(body.Genre, body.Theme, body.Mood, body.Language, body.Structure)
	if err != nil {
		writeJSON(w, generator.StatusCode(err), errorResponse{Error: generator.UserMessage(err)})
		return
	}

	result, err := h.generator.Generate(r.Context(), request, r.Header.Get(CredentialHeader))
	if err != nil {
		writeJSON(w, generator.StatusCode(err), errorResponse{Error: generator.UserMessage(err)})
		return
	}

	stylePrompt, text := lyrics.Split(result.RawText)
	writeJSON(w, http.StatusOK, generateResponse{
		ID:          result.ID,
		RawText:     result.RawText,
		DisplayText: result.DisplayText,
		StylePrompt: stylePrompt,
		Lyrics:      text,
		Demo:        result.Demo,
		Provider:    result.Provider,
		Model:       result.Model,
		DurationMS:  result.Duration.Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		slog.Error("Failed to write response", slog.Any("error", err))
	}
}
