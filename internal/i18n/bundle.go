package i18n

import (
	"sort"
	"strings"
	"sync"
)

// Bundle holds UI text per language. Lookups fall back to the built-in defaults
// and finally to the key itself, so the site stays readable when ui_text fails.
type Bundle struct {
	mu   sync.RWMutex
	dict map[Code]map[string]string
}

func NewBundle() *Bundle {
	return &Bundle{dict: map[Code]map[string]string{}}
}

// Replace installs entries as the complete text of lang. Keys missing from
// entries fall back to the defaults again.
func (b *Bundle) Replace(lang Code, entries map[string]string) {
	entries = normalizeEntries(entries)
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(entries) == 0 {
		delete(b.dict, lang)
		return
	}
	b.dict[lang] = entries
}

// T returns the text for key in lang.
func (b *Bundle) T(lang Code, key string) string {
	if b != nil {
		b.mu.RLock()
		v, ok := b.dict[lang][key]
		b.mu.RUnlock()
		if ok {
			return v
		}
	}
	if v, ok := defaults[lang][key]; ok {
		return v
	}
	if v, ok := defaults[Default][key]; ok {
		return v
	}
	return key
}

// Keys lists the keys known for lang, sorted.
func (b *Bundle) Keys(lang Code) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.dict[lang]))
	for k := range b.dict[lang] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// For binds the bundle to one language.
func (b *Bundle) For(lang Code) Text {
	return Text{bundle: b, Lang: lang}
}

// Text is a Bundle bound to a language, handy inside templates.
type Text struct {
	bundle *Bundle
	Lang   Code
}

// T returns the localized text for key.
func (t Text) T(key string) string {
	return t.bundle.T(t.Lang, key)
}

// normalizeEntries trims keys and values, dropping entries with empty keys.
func normalizeEntries(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]string, len(values))
	for key, value := range values {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		result[trimmedKey] = strings.TrimSpace(value)
	}
	return result
}

var defaults = map[Code]map[string]string{
	English: {
		"na":                     "N/A",
		"not_available":          "Not available",
		"present":                "Present",
		"view_details":           "View Details",
		"home":                   "Home",
		"career_title":           "Career",
		"academic_title":         "Academic Background",
		"skills_title":           "Skills & Expertise",
		"projects_title":         "Projects",
		"timeline_page_title":    "Career Timeline",
		"timeline_link_text":     "View Full Timeline",
		"career_details_title":   "Career Details",
		"academic_details_title": "Academic Details",
		"scope_responsibilities": "Scope & Responsibilities",
		"achievements":           "Key Achievements",
		"star_examples":          "Achievement Highlights (STAR)",
		"situation":              "Situation",
		"target":                 "Target",
		"actions":                "Actions",
		"result":                 "Result",
		"course":                 "Course",
		"grade":                  "Grade",
		"contact_info":           "Contact Information",
		"feedback_form_title":    "Send Feedback",
		"feedback_name_label":    "Name",
		"feedback_email_label":   "Email",
		"feedback_message_label": "Message",
		"feedback_send_button":   "Send Message",
		"feedback_success":       "Thank you! Your message has been sent.",
		"feedback_error":         "Sorry, there was an error. Please check your input.",
		"feedback_rate_limited":  "Too many messages. Please try again later.",
		"previous":               "Previous",
		"next":                   "Next",
		"slide":                  "Slide",
		"not_found":              "The requested entry was not found.",
		"content_unavailable":    "Content is currently unavailable. Please try again later.",
		"hard_skills":            "Hard Skills",
		"soft_skills":            "Soft Skills",
		"it_skills":              "IT Skills",
		"language_label":         "Language",
	},
	German: {
		"not_available":          "Nicht verfügbar",
		"present":                "Heute",
		"view_details":           "Details ansehen",
		"home":                   "Startseite",
		"career_title":           "Werdegang",
		"academic_title":         "Ausbildung",
		"skills_title":           "Fähigkeiten & Kompetenzen",
		"projects_title":         "Projekte",
		"timeline_page_title":    "Karriere-Zeitstrahl",
		"timeline_link_text":     "Vollständigen Zeitstrahl ansehen",
		"career_details_title":   "Details zur Position",
		"academic_details_title": "Details zur Ausbildung",
		"scope_responsibilities": "Aufgaben & Verantwortung",
		"achievements":           "Wichtigste Erfolge",
		"star_examples":          "Erfolgsbeispiele (STAR)",
		"situation":              "Situation",
		"target":                 "Ziel",
		"actions":                "Maßnahmen",
		"result":                 "Ergebnis",
		"course":                 "Studiengang",
		"grade":                  "Note",
		"contact_info":           "Kontakt",
		"feedback_form_title":    "Feedback senden",
		"feedback_name_label":    "Name",
		"feedback_email_label":   "E-Mail",
		"feedback_message_label": "Nachricht",
		"feedback_send_button":   "Nachricht senden",
		"feedback_success":       "Vielen Dank! Ihre Nachricht wurde gesendet.",
		"feedback_error":         "Leider ist ein Fehler aufgetreten. Bitte prüfen Sie Ihre Eingaben.",
		"feedback_rate_limited":  "Zu viele Nachrichten. Bitte versuchen Sie es später erneut.",
		"previous":               "Zurück",
		"next":                   "Weiter",
		"slide":                  "Folie",
		"not_found":              "Der angeforderte Eintrag wurde nicht gefunden.",
		"content_unavailable":    "Inhalte sind derzeit nicht verfügbar. Bitte versuchen Sie es später erneut.",
		"hard_skills":            "Fachkompetenzen",
		"soft_skills":            "Soziale Kompetenzen",
		"it_skills":              "IT-Kenntnisse",
		"language_label":         "Sprache",
	},
	French: {
		"not_available":          "Non disponible",
		"present":                "Aujourd'hui",
		"view_details":           "Voir les détails",
		"home":                   "Accueil",
		"career_title":           "Parcours",
		"academic_title":         "Formation",
		"skills_title":           "Compétences",
		"projects_title":         "Projets",
		"timeline_page_title":    "Chronologie de carrière",
		"timeline_link_text":     "Voir la chronologie complète",
		"career_details_title":   "Détails du poste",
		"academic_details_title": "Détails de la formation",
		"scope_responsibilities": "Missions & responsabilités",
		"achievements":           "Réalisations clés",
		"star_examples":          "Exemples de réussite (STAR)",
		"situation":              "Situation",
		"target":                 "Objectif",
		"actions":                "Actions",
		"result":                 "Résultat",
		"course":                 "Cursus",
		"grade":                  "Mention",
		"contact_info":           "Coordonnées",
		"feedback_form_title":    "Envoyer un message",
		"feedback_name_label":    "Nom",
		"feedback_email_label":   "E-mail",
		"feedback_message_label": "Message",
		"feedback_send_button":   "Envoyer",
		"feedback_success":       "Merci ! Votre message a bien été envoyé.",
		"feedback_error":         "Une erreur est survenue. Veuillez vérifier votre saisie.",
		"feedback_rate_limited":  "Trop de messages. Veuillez réessayer plus tard.",
		"previous":               "Précédent",
		"next":                   "Suivant",
		"slide":                  "Diapositive",
		"not_found":              "L'entrée demandée est introuvable.",
		"content_unavailable":    "Le contenu est momentanément indisponible. Veuillez réessayer plus tard.",
		"hard_skills":            "Compétences techniques",
		"soft_skills":            "Compétences humaines",
		"it_skills":              "Informatique",
		"language_label":         "Langue",
	},
}
