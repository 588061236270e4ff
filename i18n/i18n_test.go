package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "fi_FI.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "fi_FI" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fi_FI")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fi_FI.UTF-8")

		if got := detectLanguage(); got != "fi_FI" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fi_FI")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Manifest"); got != "Manifest" {
		t.Fatalf("T fallback = %q, want %q", got, "Manifest")
	}

	if got := N("%d file", "%d files", 1); got != "%d file" {
		t.Fatalf("N singular fallback = %q", got)
	}

	if got := N("%d file", "%d files", 2); got != "%d files" {
		t.Fatalf("N plural fallback = %q", got)
	}
}

func TestEmbeddedFinnishLocale(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("fi")
	if got := T("Manifest"); got != "Manifesti" {
		t.Fatalf("T(Manifest) = %q, want Manifesti", got)
	}
	if got := N("%d file", "%d files", 2); got != "%d tiedostoa" {
		t.Fatalf("N plural = %q, want %%d tiedostoa", got)
	}
}

func TestUnknownLanguagePassesThrough(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("xx")
	if got := T("Manifest"); got != "Manifest" {
		t.Fatalf("T passthrough = %q, want Manifest", got)
	}
}
