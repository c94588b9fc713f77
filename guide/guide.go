// Package guide resolves the per-language instructional text that teaches
// the model the save-directive syntax.
package guide

import (
	"regexp"
	"strings"
)

// Marker prefixes every resolved guide text so injection sites can detect
// an already-present guide and avoid inserting it twice.
const Marker = "[MEMAUTO-GUIDE v1]"

// SupportedLanguages is the closed set of guide languages. Unrecognized
// codes resolve to English.
var SupportedLanguages = []string{"en", "de", "es", "fr", "pt", "it", "pl", "cs"}

// Resolve returns the guide text for lang, preferring a non-empty user
// override from custom over the built-in default, with the marker token
// prefixed.
func Resolve(lang string, custom map[string]string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	body := strings.TrimSpace(custom[lang])
	if body == "" {
		body = Default(lang)
	}
	return strings.TrimSpace(Marker + "\n" + body)
}

// Default returns the built-in guide text for lang, falling back to the
// English default for unrecognized codes.
func Default(lang string) string {
	if text, ok := defaults[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return text
	}
	return defaults["en"]
}

// Supported reports whether lang is in the closed language set.
func Supported(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// HasTrigger reports whether text contains any of the trigger words as a
// whole word (case-insensitive). Words that cannot form a valid pattern
// degrade to a substring test.
func HasTrigger(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(w) + `\b`)
		if err != nil {
			if strings.Contains(lower, w) {
				return true
			}
			continue
		}
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

var defaults = map[string]string{
	"en": "You can store memories by adding one command line to your reply:\n\n" +
		"• JSON (preferred)\n" +
		"  save: {\"memory\":\"<content>\",\"keywords\":\"kw1,kw2\",\"always\":false}\n\n" +
		"• Key–Value (fallback)\n" +
		"  save: memory=<text>, keywords=kw1,kw2, always=true\n\n" +
		"• Short form\n" +
		"  save: (short memory text)\n\n" +
		"Rules:\n" +
		"- Save only stable, helpful info (preferences, recurring goals, constraints).\n" +
		"- No sensitive data without consent.\n" +
		"- Keep it short & precise (≤ 1–5 sentences) per memory.\n" +
		"- keywords: 1–5 focused triggers; use always=true only if broadly useful.\n\n" +
		"Good examples:\n" +
		"save: {\"memory\":\"User wants concise answers (≤5 sentences).\",\"keywords\":\"concise,short\",\"always\":true}\n" +
		"save: {\"memory\":\"Project=Helios; Stack=Next.js+Supabase.\",\"keywords\":\"helios,project\"}\n" +
		"save: memory=No emojis, keywords=emoji, always=true",

	"de": "Du kannst Erinnerungen speichern, indem du eine einzelne Befehlszeile in deine Antwort einfügst:\n\n" +
		"• JSON (bevorzugt)\n" +
		"  save: {\"memory\":\"<Inhalt>\",\"keywords\":\"kw1,kw2\",\"always\":false}\n\n" +
		"• Key–Value (Fallback)\n" +
		"  save: memory=<text>, keywords=kw1,kw2, always=true\n\n" +
		"• Kurzform\n" +
		"  save: (kurzer Erinnerungstext)\n\n" +
		"Regeln:\n" +
		"- Speichere nur stabile, hilfreiche Informationen (Vorlieben, wiederkehrende Ziele, Randbedingungen).\n" +
		"- Keine sensiblen Daten ohne Zustimmung.\n" +
		"- Kurz & präzise (≤ 1–5 Sätze) je Memory.\n" +
		"- keywords: 1–5 präzise Triggerwörter, always=true nur wenn global sinnvoll.\n\n" +
		"Gute Beispiele:\n" +
		"save: {\"memory\":\"User wünscht kurze Antworten (≤5 Sätze).\",\"keywords\":\"kurz,prägnant\",\"always\":true}\n" +
		"save: {\"memory\":\"Projekt=Helios; Stack=Next.js+Supabase.\",\"keywords\":\"helios,projekt\"}\n" +
		"save: memory=Keine Emojis verwenden, keywords=emoji, always=true",

	"es": "Puedes guardar memorias añadiendo una sola línea de comando a tu respuesta:\n\n" +
		"• JSON (preferido)\n" +
		"  save: {\"memory\":\"<contenido>\",\"keywords\":\"kw1,kw2\",\"always\":false}\n\n" +
		"• Clave–Valor (alternativa)\n" +
		"  save: memory=<texto>, keywords=kw1,kw2, always=true\n\n" +
		"• Forma corta\n" +
		"  save: (texto corto de memoria)\n\n" +
		"Reglas:\n" +
		"- Guarda solo información estable y útil (preferencias, metas recurrentes, restricciones).\n" +
		"- No guardes datos sensibles sin consentimiento.\n" +
		"- Manténlo breve y preciso (≤ 1–5 frases) por memoria.\n" +
		"- keywords: 1–5 disparadores precisos; usa always=true solo si es ampliamente útil.\n\n" +
		"Buenos ejemplos:\n" +
		"save: {\"memory\":\"El usuario quiere respuestas concisas (≤5 frases).\",\"keywords\":\"conciso,corto\",\"always\":true}\n" +
		"save: {\"memory\":\"Proyecto=Helios; Stack=Next.js+Supabase.\",\"keywords\":\"helios,proyecto\"}\n" +
		"save: memory=Sin emojis, keywords=emoji, always=true",

	"fr": "Vous pouvez enregistrer des mémoires en ajoutant une seule ligne de commande à votre réponse :\n\n" +
		"• JSON (recommandé)\n" +
		"  save: {\"memory\":\"<contenu>\",\"keywords\":\"kw1,kw2\",\"always\":false}\n\n" +
		"• Clé–Valeur (solution de repli)\n" +
		"  save: memory=<texte>, keywords=kw1,kw2, always=true\n\n" +
		"• Forme courte\n" +
		"  save: (texte court de mémoire)\n\n" +
		"Règles :\n" +
		"- N'enregistrez que des informations stables et utiles (préférences, objectifs récurrents, contraintes).\n" +
		"- Pas de données sensibles sans consentement.\n" +
		"- Gardez le tout bref et précis (≤ 1–5 phrases) par mémoire.\n" +
		"- keywords : 1 à 5 déclencheurs précis ; utilisez always=true uniquement si c'est largement utile.\n\n" +
		"Bons exemples :\n" +
		"save: {\"memory\":\"L'utilisateur souhaite des réponses concises (≤5 phrases).\",\"keywords\":\"concis,court\",\"always\":true}\n" +
		"save: {\"memory\":\"Projet=Helios; Stack=Next.js+Supabase.\",\"keywords\":\"helios,projet\"}\n" +
		"save: memory=Pas d'emojis, keywords=emoji, always=true",

	"pt": "Você pode armazenar memórias adicionando uma única linha de comando à sua resposta:\n\n" +
		"• JSON (preferido)\n" +
		"  save: {\"memory\":\"<conteúdo>\",\"keywords\":\"kw1,kw2\",\"always\":false}\n\n" +
		"• Chave–Valor (alternativa)\n" +
		"  save: memory=<texto>, keywords=kw1,kw2, always=true\n\n" +
		"• Forma curta\n" +
		"  save: (texto curto da memória)\n\n" +
		"Regras:\n" +
		"- Salve apenas informações estáveis e úteis (preferências, metas recorrentes, restrições).\n" +
		"- Não salve dados sensíveis sem consentimento.\n" +
		"- Mantenha curto e preciso (≤ 1–5 frases) por memória.\n" +
		"- keywords: 1–5 gatilhos precisos; use always=true apenas se for amplamente útil.\n\n" +
		"Bons exemplos:\n" +
		"save: {\"memory\":\"Usuário deseja respostas concisas (≤5 frases).\",\"keywords\":\"conciso,curto\",\"always\":true}\n" +
		"save: {\"memory\":\"Projeto=Helios; Stack=Next.js+Supabase.\",\"keywords\":\"helios,projeto\"}\n" +
		"save: memory=Sem emojis, keywords=emoji, always=true",

	"it": "Puoi salvare le memorie aggiungendo una singola riga di comando alla tua risposta:\n\n" +
		"• JSON (preferito)\n" +
		"  save: {\"memory\":\"<contenuto>\",\"keywords\":\"kw1,kw2\",\"always\":false}\n\n" +
		"• Chiave–Valore (alternativa)\n" +
		"  save: memory=<testo>, keywords=kw1,kw2, always=true\n\n" +
		"• Forma breve\n" +
		"  save: (breve testo della memoria)\n\n" +
		"Regole:\n" +
		"- Salva solo informazioni stabili e utili (preferenze, obiettivi ricorrenti, vincoli).\n" +
		"- Non salvare dati sensibili senza consenso.\n" +
		"- Mantieni il testo breve e preciso (≤ 1–5 frasi) per ogni memoria.\n" +
		"- keywords: 1–5 parole chiave mirate; usa always=true solo se ampiamente utile.\n\n" +
		"Esempi validi:\n" +
		"save: {\"memory\":\"L'utente desidera risposte concise (≤5 frasi).\",\"keywords\":\"conciso,breve\",\"always\":true}\n" +
		"save: {\"memory\":\"Progetto=Helios; Stack=Next.js+Supabase.\",\"keywords\":\"helios,progetto\"}\n" +
		"save: memory=Nessuna emoji, keywords=emoji, always=true",

	"pl": "Możesz zapisywać wspomnienia, dodając jedną linię polecenia do swojej odpowiedzi:\n\n" +
		"• JSON (preferowane)\n" +
		"  save: {\"memory\":\"<treść>\",\"keywords\":\"kw1,kw2\",\"always\":false}\n\n" +
		"• Klucz–Wartość (alternatywa)\n" +
		"  save: memory=<tekst>, keywords=kw1,kw2, always=true\n\n" +
		"• Krótka forma\n" +
		"  save: (krótki tekst pamięci)\n\n" +
		"Zasady:\n" +
		"- Zapisuj tylko stabilne i przydatne informacje (preferencje, powtarzające się cele, ograniczenia).\n" +
		"- Nie zapisuj danych wrażliwych bez zgody.\n" +
		"- Zachowaj zwięzłość i precyzję (≤ 1–5 zdań) na jedną pamięć.\n" +
		"- keywords: 1–5 dokładnych słów kluczowych; always=true używaj tylko, jeśli jest to szeroko przydatne.\n\n" +
		"Dobre przykłady:\n" +
		"save: {\"memory\":\"Użytkownik chce zwięzłych odpowiedzi (≤5 zdań).\",\"keywords\":\"zwięzłe,krótkie\",\"always\":true}\n" +
		"save: {\"memory\":\"Projekt=Helios; Stack=Next.js+Supabase.\",\"keywords\":\"helios,projekt\"}\n" +
		"save: memory=Bez emotikonów, keywords=emoji, always=true",

	"cs": "Můžete ukládat vzpomínky přidáním jediného příkazového řádku do své odpovědi:\n\n" +
		"• JSON (preferované)\n" +
		"  save: {\"memory\":\"<obsah>\",\"keywords\":\"kw1,kw2\",\"always\":false}\n\n" +
		"• Klíč–Hodnota (alternativa)\n" +
		"  save: memory=<text>, keywords=kw1,kw2, always=true\n\n" +
		"• Krátká forma\n" +
		"  save: (krátký text paměti)\n\n" +
		"Pravidla:\n" +
		"- Ukládejte pouze stabilní a užitečné informace (preference, opakující se cíle, omezení).\n" +
		"- Neukládejte citlivá data bez souhlasu.\n" +
		"- Držte to krátké a přesné (≤ 1–5 vět) na jednu paměť.\n" +
		"- keywords: 1–5 přesných spouštěčů; always=true použijte jen, pokud je to obecně užitečné.\n\n" +
		"Dobré příklady:\n" +
		"save: {\"memory\":\"Uživatel chce stručné odpovědi (≤5 vět).\",\"keywords\":\"stručné,krátké\",\"always\":true}\n" +
		"save: {\"memory\":\"Projekt=Helios; Stack=Next.js+Supabase.\",\"keywords\":\"helios,projekt\"}\n" +
		"save: memory=Bez emotikonů, keywords=emoji, always=true",
}
