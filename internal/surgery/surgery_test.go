package surgery

import "testing"

func TestDropScheme(t *testing.T) {
	cases := []struct {
		in, wantScheme, wantRest string
		wantOK                   bool
	}{
		{"https://example.com/x", "https", "example.com/x", true},
		{"ssh://git@host/x", "ssh", "git@host/x", true},
		{"example.com/x", "", "example.com/x", false},
		{"git@host:path", "", "git@host:path", false},
	}
	for _, c := range cases {
		b := New(c.in)
		scheme, ok := b.DropScheme()
		if ok != c.wantOK || scheme != c.wantScheme || b.String() != c.wantRest {
			t.Errorf("DropScheme(%q) = (%q, %v, rest=%q), want (%q, %v, rest=%q)",
				c.in, scheme, ok, b.String(), c.wantScheme, c.wantOK, c.wantRest)
		}
	}
}

func TestDropUserinfo(t *testing.T) {
	cases := []struct {
		in, wantUser, wantRest string
		wantOK                 bool
	}{
		{"mona@example.com/x", "mona", "example.com/x", true},
		{"mona:p@ss@example.com/x", "mona", "example.com/x", true},
		{"example.com/x@y", "", "example.com/x@y", false},
	}
	for _, c := range cases {
		b := New(c.in)
		user, ok := b.DropUserinfo()
		if ok != c.wantOK || user != c.wantUser || b.String() != c.wantRest {
			t.Errorf("DropUserinfo(%q) = (%q, %v, rest=%q), want (%q, %v, rest=%q)",
				c.in, user, ok, b.String(), c.wantUser, c.wantOK, c.wantRest)
		}
	}
}

func TestRemovePort(t *testing.T) {
	cases := []struct {
		in, want string
		wantOK   bool
	}{
		{"example.com:443/mona/repo", "example.com/mona/repo", true},
		{"example.com/mona:repo", "example.com/mona:repo", false},
		{"example.com:abc/repo", "example.com:abc/repo", false},
	}
	for _, c := range cases {
		b := New(c.in)
		ok := b.RemovePort()
		if ok != c.wantOK || b.String() != c.want {
			t.Errorf("RemovePort(%q) = (%v, %q), want (%v, %q)", c.in, ok, b.String(), c.wantOK, c.want)
		}
	}
}

func TestRemoveFragmentAndQuery(t *testing.T) {
	b := New("example.com/mona/repo?utm=x#top")
	b.RemoveQuery()
	if b.String() != "example.com/mona/repo" {
		t.Fatalf("RemoveQuery left %q", b.String())
	}

	b = New("example.com/mona/repo#top?not-a-query")
	b.RemoveFragment()
	if b.String() != "example.com/mona/repo" {
		t.Fatalf("RemoveFragment left %q", b.String())
	}
}

func TestNormalizeWindowsPathPrefix(t *testing.T) {
	cases := []struct {
		in, want string
		wantOK   bool
	}{
		{`c:\user\mona\repo`, `\user\mona\repo`, true},
		{`\\?\c:\user\mona\repo`, `\user\mona\repo`, true},
		{`\\??\c:\user\mona\repo`, `\user\mona\repo`, true},
		{`/users/mona/repo`, `/users/mona/repo`, false},
	}
	for _, c := range cases {
		b := New(c.in)
		ok := b.NormalizeWindowsPathPrefix()
		if ok != c.wantOK || b.String() != c.want {
			t.Errorf("NormalizeWindowsPathPrefix(%q) = (%v, %q), want (%v, %q)", c.in, ok, b.String(), c.wantOK, c.want)
		}
	}
}

func TestReplaceFirst(t *testing.T) {
	b := New("git@host:mona/repo")
	slash := len("git@host:mona/repo")
	if idx := indexByte(b.String(), '/'); idx >= 0 {
		slash = idx
	}
	if !b.ReplaceFirst(":", "/", slash) {
		t.Fatalf("expected replacement")
	}
	if b.String() != "git@host/mona/repo" {
		t.Fatalf("got %q", b.String())
	}
}

func indexByte(s string, r byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == r {
			return i
		}
	}
	return -1
}
