package gemini

import (
	"regexp"
	"strings"

	"github.com/originlens/backend/internal/domain"
)

// heuristicConfidence is assigned to every regex-extracted attribute. Regex
// hits are weak evidence compared to the model and must stay below the cache
// admission threshold.
const heuristicConfidence = 0.3

var (
	countryPattern  = regexp.MustCompile(`(?i)((?:made\s+in|原産国|製造国)[\s:：]*([A-Za-z\x{3040}-\x{30ff}\x{4e00}-\x{9fff}]+))`)
	sizePattern     = regexp.MustCompile(`(?i)((?:size|サイズ)[\s:：/]*([A-Za-z0-9/ cmMLXS.]+))`)
	materialPattern = regexp.MustCompile(`(?i)((?:material|素材|材料)[\s:：]*([A-Za-z\x{3040}-\x{30ff}\x{4e00}-\x{9fff}0-9％/・]+))`)
	materialNames   = regexp.MustCompile(`(?i)(カシミヤ|cashmere|cotton|綿|wool|ウール|polyester|ポリエステル|leather|革|silk|シルク)`)
	hsCodePattern   = regexp.MustCompile(`(?i)((?:hs\s*code|hsコード|関税番号)[\s:：]*([0-9.\-]{4,}))`)
)

// countryNames maps substrings of a country mention to ISO alpha-2 codes.
// Regions without their own major ISO code map to their parent country.
var countryNames = []struct {
	needle string
	code   string
}{
	{"JAPAN", "JP"}, {"日本", "JP"},
	{"CHINA", "CN"}, {"中国", "CN"},
	{"VIETNAM", "VN"}, {"ベトナム", "VN"},
	{"INDONESIA", "ID"}, {"インドネシア", "ID"},
	{"KOREA", "KR"}, {"韓国", "KR"},
	{"TAIWAN", "TW"}, {"台湾", "TW"},
	{"THAILAND", "TH"}, {"タイ", "TH"},
	{"SCOTLAND", "GB"}, {"ENGLAND", "GB"}, {"WALES", "GB"},
	{"PUERTO RICO", "US"}, {"USA", "US"}, {"AMERICA", "US"},
	{"ITALY", "IT"}, {"イタリア", "IT"},
	{"FRANCE", "FR"}, {"フランス", "FR"},
	{"GERMANY", "DE"}, {"ドイツ", "DE"},
}

// targetUserPatterns collect the audience mentions the prompt asks the model
// for, with Japanese retail forms.
var targetUserPatterns = []struct {
	pattern *regexp.Regexp
	user    string
}{
	{regexp.MustCompile(`(?i)((?:for|向け|対象)[\s:：]*(?:kids?|children|baby|infant|toddler|キッズ|子供|こども|ベビー|赤ちゃん|幼児))`), "children"},
	{regexp.MustCompile(`(?i)((?:for|向け|対象)[\s:：]*(?:adult|大人|おとな|成人))`), "adult"},
	{regexp.MustCompile(`(?i)((?:for|向け|対象)[\s:：]*(?:men|male|メンズ|男性|紳士))`), "men"},
	{regexp.MustCompile(`(?i)((?:for|向け|対象)[\s:：]*(?:women|ladies|female|レディース|女性|婦人))`), "women"},
	{regexp.MustCompile(`(?i)((?:for|向け|対象)[\s:：]*(?:senior|elderly|シニア|高齢者|お年寄り))`), "senior"},
	{regexp.MustCompile(`(?i)((?:for|向け|対象)[\s:：]*(?:unisex|ユニセックス|男女兼用))`), "unisex"},
	{regexp.MustCompile(`(キッズ|子供用|子ども用)`), "children"},
	{regexp.MustCompile(`(ベビー用|赤ちゃん用|乳児用)`), "baby"},
	{regexp.MustCompile(`(メンズ|男性用|紳士用)`), "men"},
	{regexp.MustCompile(`(レディース|女性用|婦人用)`), "women"},
	{regexp.MustCompile(`(シニア|高齢者用)`), "senior"},
	{regexp.MustCompile(`(男女兼用|ユニセックス)`), "unisex"},
}

// heuristicExtract pulls attributes out of the original text with
// language-tagged regex patterns. Used when the model response cannot be
// parsed. Always succeeds: fields that do not match keep template defaults.
func heuristicExtract(text string) *domain.Attributes {
	attrs := domain.DefaultAttributes()

	if m := countryPattern.FindStringSubmatch(text); m != nil {
		name := strings.ToUpper(m[2])
		for _, cn := range countryNames {
			if strings.Contains(name, cn.needle) {
				attrs.Country = domain.ListAttribute{
					Value:      domain.StringList{cn.code},
					Evidence:   strings.TrimSpace(m[1]),
					Confidence: heuristicConfidence,
				}
				break
			}
		}
	}

	if m := sizePattern.FindStringSubmatch(text); m != nil {
		attrs.Size = domain.ScalarAttribute{
			Value:      strings.TrimSpace(m[2]),
			Evidence:   strings.TrimSpace(m[1]),
			Confidence: heuristicConfidence,
		}
	}

	if m := materialPattern.FindStringSubmatch(text); m != nil {
		attrs.Material = domain.ScalarAttribute{
			Value:      strings.TrimSpace(m[2]),
			Evidence:   strings.TrimSpace(m[1]),
			Confidence: heuristicConfidence,
		}
	} else if m := materialNames.FindStringSubmatch(text); m != nil {
		attrs.Material = domain.ScalarAttribute{
			Value:      strings.TrimSpace(m[1]),
			Evidence:   strings.TrimSpace(m[1]),
			Confidence: heuristicConfidence,
		}
	}

	var users []string
	var evidence []string
	seen := make(map[string]bool)
	for _, tp := range targetUserPatterns {
		if m := tp.pattern.FindStringSubmatch(text); m != nil && !seen[tp.user] {
			seen[tp.user] = true
			users = append(users, tp.user)
			evidence = append(evidence, strings.TrimSpace(m[0]))
		}
	}
	if len(users) > 0 {
		attrs.TargetUser = domain.ListAttribute{
			Value:      users,
			Evidence:   strings.Join(evidence, " "),
			Confidence: heuristicConfidence,
		}
	}

	if m := hsCodePattern.FindStringSubmatch(text); m != nil {
		attrs.HSCode = domain.ScalarAttribute{
			Value:      strings.TrimSpace(m[2]),
			Evidence:   strings.TrimSpace(m[1]),
			Confidence: heuristicConfidence,
		}
	}

	return attrs
}
