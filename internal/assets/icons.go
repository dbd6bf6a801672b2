package assets

import (
	"sort"
	"strings"
	"unicode"

	"deck-server/internal/domain"
)

// IconProvider подбирает иконку по короткому запросу.
type IconProvider interface {
	Search(query string) string
}

// iconKeywords - иконки из static/icons и слова, по которым они находятся.
var iconKeywords = map[string][]string{
	"chart-bar":    {"chart", "bar", "statistics", "stats", "data", "analytics", "metrics"},
	"chart-line":   {"growth", "trend", "increase", "line", "progress"},
	"chart-pie":    {"pie", "share", "distribution", "percentage", "portion"},
	"users":        {"users", "team", "people", "group", "community", "audience"},
	"user":         {"user", "person", "profile", "customer", "client"},
	"lightbulb":    {"idea", "innovation", "insight", "creativity", "tip"},
	"target":       {"target", "goal", "objective", "focus", "aim"},
	"rocket":       {"rocket", "launch", "startup", "fast", "speed"},
	"shield":       {"security", "shield", "protection", "safety", "privacy"},
	"lock":         {"lock", "secure", "password", "encryption"},
	"globe":        {"globe", "world", "global", "international", "earth"},
	"money":        {"money", "price", "pricing", "cost", "revenue", "finance", "budget", "dollar"},
	"calendar":     {"calendar", "schedule", "date", "timeline", "deadline", "plan"},
	"clock":        {"clock", "time", "hour", "duration"},
	"gear":         {"gear", "settings", "process", "operations", "engineering", "configuration"},
	"cloud":        {"cloud", "hosting", "saas", "server"},
	"database":     {"database", "storage", "db", "records"},
	"code":         {"code", "software", "developer", "programming", "api"},
	"mail":         {"mail", "email", "message", "contact"},
	"phone":        {"phone", "mobile", "call", "smartphone"},
	"heart":        {"heart", "health", "love", "care", "wellness"},
	"leaf":         {"leaf", "eco", "green", "sustainability", "environment", "nature"},
	"book":         {"book", "education", "learning", "study", "knowledge", "training"},
	"graduation":   {"graduation", "school", "university", "degree", "student"},
	"cart":         {"cart", "shopping", "ecommerce", "store", "retail", "sales"},
	"truck":        {"truck", "delivery", "shipping", "logistics", "transport"},
	"handshake":    {"handshake", "partnership", "deal", "agreement", "collaboration"},
	"trophy":       {"trophy", "award", "winner", "achievement", "success"},
	"star":         {"star", "favorite", "rating", "quality", "review"},
	"check":        {"check", "done", "complete", "approved", "benefit"},
	"warning":      {"warning", "risk", "alert", "danger", "issue", "problem"},
	"question":     {"question", "faq", "help", "support", "unknown"},
	"search":       {"search", "research", "discover", "find", "explore"},
	"map":          {"map", "location", "place", "route", "region"},
	"building":     {"building", "company", "office", "enterprise", "corporate"},
	"factory":      {"factory", "manufacturing", "production", "industry"},
	"brain":        {"brain", "ai", "intelligence", "ml", "thinking"},
	"robot":        {"robot", "automation", "bot", "machine"},
	"megaphone":    {"megaphone", "marketing", "announcement", "campaign", "promotion"},
	"document":     {"document", "report", "file", "paper", "contract"},
	"presentation": {"presentation", "slides", "meeting", "pitch"},
}

// IconCatalog - статический каталог иконок.
type IconCatalog struct {
	baseURL string
	index   map[string]string // ключевое слово -> иконка
	names   map[string]struct{}
}

// NewIconCatalog строит индекс ключевых слов. baseURL - путь раздачи svg.
func NewIconCatalog(baseURL string) *IconCatalog {
	c := &IconCatalog{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		index:   make(map[string]string),
		names:   make(map[string]struct{}, len(iconKeywords)),
	}
	// детерминированный порядок: при совпадении слов побеждает иконка с меньшим именем
	names := make([]string, 0, len(iconKeywords))
	for name := range iconKeywords {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.names[name] = struct{}{}
		for _, kw := range iconKeywords[name] {
			if _, taken := c.index[kw]; !taken {
				c.index[kw] = name
			}
		}
	}
	return c
}

// Search возвращает URL иконки или плейсхолдер, если ничего не нашлось.
func (c *IconCatalog) Search(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return domain.PlaceholderIconURL
	}
	if _, ok := c.names[q]; ok {
		return c.url(q)
	}
	tokens := strings.FieldsFunc(q, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	for _, tok := range tokens {
		if name, ok := c.index[tok]; ok {
			return c.url(name)
		}
	}
	// простое совпадение по основе: "analytics" -> "analytic"
	for _, tok := range tokens {
		stem := strings.TrimSuffix(tok, "s")
		if name, ok := c.index[stem]; ok {
			return c.url(name)
		}
	}
	return domain.PlaceholderIconURL
}

func (c *IconCatalog) url(name string) string {
	return c.baseURL + "/" + name + ".svg"
}
