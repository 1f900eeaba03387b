package lyrics

import "strings"

const (
	// StylePromptMarker precedes the style prompt in generated text.
	StylePromptMarker = "**[Style Prompt]**"
	// LyricsMarker precedes the lyrics in generated text.
	LyricsMarker = "**[Lyrics]**"
)

// Style controls how rendered text is decorated.
type Style struct {
	// TagPrefix and TagSuffix surround a bracketed section tag.
	TagPrefix string
	TagSuffix string
	// StylePromptHeading replaces StylePromptMarker.
	StylePromptHeading string
	// LyricsHeading replaces LyricsMarker.
	LyricsHeading string
	// Escape, if set, is applied to all text taken from the input.
	Escape func(string) string
}

// textEscaper escapes text for an HTML text node. Quotes are left as-is, the
// output is never placed in an attribute.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var (
	// HTMLStyle renders for display in an HTML text node. '<', '>' and '&' are
	// escaped.
	HTMLStyle = Style{
		TagPrefix:          `<span class="tag">`,
		TagSuffix:          `</span>`,
		StylePromptHeading: `<strong class="section-heading">Style Prompt</strong>`,
		LyricsHeading:      `<br><br><strong class="section-heading">Lyrics</strong>`,
		Escape:             textEscaper.Replace,
	}
	// MarkdownStyle renders for Discord messages.
	MarkdownStyle = Style{
		TagPrefix:          "**",
		TagSuffix:          "**",
		StylePromptHeading: "__**Style Prompt**__",
		LyricsHeading:      "__**Lyrics**__",
	}
	// PlainStyle renders plain text, suitable for downloads or terminals.
	PlainStyle = Style{
		StylePromptHeading: "Style Prompt:",
		LyricsHeading:      "Lyrics:",
	}
)

// Render renders text using HTMLStyle.
func Render(text string) string {
	return RenderWith(HTMLStyle, text)
}

// RenderWith highlights section tags such as [Verse] and replaces the style
// prompt and lyrics markers with headings.
//
// A tag runs from a '[' to the next ']' on the same line. Brackets are not
// nested: a '[' followed by another '[' or a newline before any ']' is kept
// as-is, as is any stray ']'. Text without brackets is only escaped.
func RenderWith(style Style, text string) string {
	escape := style.Escape
	if escape == nil {
		escape = func(s string) string { return s }
	}

	var builder strings.Builder
	builder.Grow(len(text))

	literalStart := 0
	flush := func(end int) {
		if end > literalStart {
			builder.WriteString(escape(text[literalStart:end]))
		}
	}

	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], StylePromptMarker):
			flush(i)
			builder.WriteString(style.StylePromptHeading)
			i += len(StylePromptMarker)
			literalStart = i
		case strings.HasPrefix(text[i:], LyricsMarker):
			flush(i)
			builder.WriteString(style.LyricsHeading)
			i += len(LyricsMarker)
			literalStart = i
		case text[i] == '[':
			end := tagEnd(text, i)
			if end < 0 {
				i++
				continue
			}
			flush(i)
			builder.WriteString(style.TagPrefix)
			builder.WriteString(escape(text[i:end]))
			builder.WriteString(style.TagSuffix)
			i = end
			literalStart = i
		default:
			i++
		}
	}
	flush(len(text))

	return builder.String()
}

// tagEnd returns the index just past the ']' closing the tag opened at start,
// or -1 if the tag is not closed.
func tagEnd(text string, start int) int {
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case ']':
			return i + 1
		case '[', '\n':
			return -1
		}
	}
	return -1
}

// Split splits marked text into its style prompt and lyrics sections. Text
// without a style prompt marker yields an empty style prompt and the text
// itself, minus any lyrics marker, as lyrics.
func Split(text string) (string, string) {
	before, after, found := strings.Cut(text, StylePromptMarker)
	if !found {
		_, lyrics, found := strings.Cut(text, LyricsMarker)
		if !found {
			return "", text
		}
		return "", strings.TrimSpace(lyrics)
	}

	stylePrompt, lyrics, found := strings.Cut(after, LyricsMarker)
	if !found {
		// No lyrics marker, assume the style prompt is the first line
		stylePrompt, lyrics, _ = strings.Cut(strings.TrimLeft(after, " \t\r\n"), "\n")
	}

	if strings.TrimSpace(before) != "" {
		lyrics = strings.TrimSpace(before) + "\n\n" + strings.TrimSpace(lyrics)
	}

	return strings.TrimSpace(stylePrompt), strings.TrimSpace(lyrics)
}

// Filename returns the name of a downloadable lyrics file.
func Filename(language Language) string {
	return "lyrics_" + string(language.OrDefault()) + ".txt"
}
