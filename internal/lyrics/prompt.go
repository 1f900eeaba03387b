package lyrics

import "strings"

type promptText struct {
	instruction string
	genre       string
	theme       string
	mood        string
	structure   string
	closing     string
	arrangement string
}

var promptTexts = map[Language]promptText{
	LanguageKorean: {
		instruction: "당신은 AI 음악 생성 서비스(Suno, Udio)를 위한 전문 작사가입니다. 한국어로 음악 가사를 작성해주세요.",
		genre:       "장르",
		theme:       "주제",
		mood:        "분위기",
		structure:   "구조",
		closing: `맨 윗줄에 Suno의 'Style of Music' 칸에 넣을 영어 스타일 프롬프트(악기, BPM, 보컬 성별 포함)를 **[Style Prompt]** 형식으로 작성하세요.
그 아래에 **[Lyrics]** 형식으로 가사를 작성하고, [Intro], [Verse], [Pre-Chorus], [Chorus], [Bridge], [Outro] 태그를 반드시 포함하세요.`,
		arrangement: "선택한 구조에 맞게 섹션을 배치하세요.",
	},
	LanguageEnglish: {
		instruction: "You are a professional lyricist writing for AI music generation services (Suno, Udio). Write song lyrics in English.",
		genre:       "Genre",
		theme:       "Theme",
		mood:        "Mood",
		structure:   "Structure",
		closing: `On the first line, write an English style prompt for Suno's 'Style of Music' field (instruments, BPM, vocal gender) in the form **[Style Prompt]**.
Below it, write the lyrics in the form **[Lyrics]**, and always include the tags [Intro], [Verse], [Pre-Chorus], [Chorus], [Bridge] and [Outro].`,
		arrangement: "Arrange the sections to match the chosen structure.",
	},
}

// Build builds the prompt for a request.
//
// The prompt consists of an instruction naming the language and the
// lyricist's role, one line per populated field in the order genre, theme,
// mood and structure, and a closing instruction naming the required section
// tags. Callers are expected to have checked Validate first.
func Build(r GenerationRequest) string {
	text := promptTexts[r.Language.OrDefault()]

	lines := []string{text.instruction}
	appendField := func(label string, value string) {
		value = strings.TrimSpace(value)
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}

	appendField(text.genre, r.Genre)
	appendField(text.theme, r.Theme)
	appendField(text.mood, r.Mood)
	appendField(text.structure, r.Structure.Label())

	lines = append(lines, "", text.closing)
	if r.Structure != "" {
		lines = append(lines, text.arrangement)
	}

	return strings.Join(lines, "\n")
}
