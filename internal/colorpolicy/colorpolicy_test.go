package colorpolicy

import "testing"

func emptyEnv(string) string { return "" }

func TestAlwaysIgnoresTTYAndEnv(t *testing.T) {
	if !Resolve("always", false, emptyEnv) {
		t.Fatal("always should resolve true even without a TTY")
	}
}

func TestNeverIgnoresTTYAndEnv(t *testing.T) {
	if Resolve("never", true, emptyEnv) {
		t.Fatal("never should resolve false even with a TTY")
	}
}

func TestAutoRequiresTTY(t *testing.T) {
	if Resolve("auto", false, emptyEnv) {
		t.Fatal("auto without a TTY should resolve false")
	}
	if !Resolve("auto", true, emptyEnv) {
		t.Fatal("auto with a TTY and no overriding env should resolve true")
	}
}

func TestAutoHonorsNoColor(t *testing.T) {
	env := func(k string) string {
		if k == "NO_COLOR" {
			return "1"
		}
		return ""
	}
	if Resolve("auto", true, env) {
		t.Fatal("auto should resolve false when NO_COLOR is set")
	}
}

func TestAutoHonorsEmacs(t *testing.T) {
	env := func(k string) string {
		if k == "EMACS" {
			return "t"
		}
		return ""
	}
	if Resolve("auto", true, env) {
		t.Fatal("auto should resolve false when EMACS is set")
	}
}
