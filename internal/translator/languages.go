package translator

import "strings"

// languageNames maps supported language codes to the human-readable names
// embedded in prompts. Unknown codes fall back to the raw code.
var languageNames = map[string]string{
	"ZH":    "中文",
	"ZH-TW": "繁体中文",
	"EN":    "英文",
	"EN-US": "美式英文",
	"EN-GB": "英式英文",
	"JA":    "日文",
	"JP":    "日文",
	"KR":    "韩文",
	"KO":    "韩文",
	"FR":    "法文",
	"DE":    "德文",
	"ES":    "西班牙文",
}

// LanguageName resolves a language code to its display name, falling back
// to the code itself for unknown codes.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}
