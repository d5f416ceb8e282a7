package cookiejar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetFromHeader(t *testing.T) {
	jar := New()
	jar.SetFromHeader("SID=abc; Path=/; Domain=example.com", "fallback.example.com")

	rec, ok := jar.Get("SID")
	require.True(t, ok)
	require.Equal(t, "abc", rec.Value)
	require.Equal(t, "/", rec.Path)
	require.Equal(t, "example.com", rec.Domain)
}

func TestSetFromHeaderDefaults(t *testing.T) {
	jar := New()
	jar.SetFromHeader("PHPSESSID=xyz; HttpOnly", "group.openjudge.cn")

	rec, ok := jar.Get("PHPSESSID")
	require.True(t, ok)
	require.Equal(t, "xyz", rec.Value)
	require.Equal(t, "group.openjudge.cn", rec.Domain)
	require.Equal(t, "/", rec.Path)
}

func TestLastWriteWins(t *testing.T) {
	jar := New()
	jar.Set("language", "zh_CN", "openjudge.cn", "/")
	jar.Set("language", "en_US", "openjudge.cn", "/")

	rec, ok := jar.Get("language")
	require.True(t, ok)
	require.Equal(t, "en_US", rec.Value)
	require.Equal(t, "language=en_US", jar.HeaderFor("openjudge.cn"))
}

func TestHeaderForDomainMatching(t *testing.T) {
	jar := New()
	jar.Set("PHPSESSID", "abc", "openjudge.cn", "/")
	jar.Set("language", "en_US", "group.openjudge.cn", "/")
	jar.Set("other", "1", "unrelated.example.com", "/")

	// parent domain cookie is sent to the subdomain and the
	// subdomain cookie is sent to the parent
	require.Equal(t, "PHPSESSID=abc; language=en_US", jar.HeaderFor("group.openjudge.cn"))
	require.Equal(t, "PHPSESSID=abc; language=en_US", jar.HeaderFor("openjudge.cn"))
}

func TestExportImportRoundTrip(t *testing.T) {
	jar := New()
	jar.SetFromHeader("PHPSESSID=xyz789; Path=/", "openjudge.cn")
	jar.SetFromHeader("language=en_US; Domain=openjudge.cn", "openjudge.cn")
	jar.Set("extra", "v=with=equals", "group.openjudge.cn", "/")

	domains := []string{"openjudge.cn", "group.openjudge.cn", "elsewhere.org"}
	want := make([]string, len(domains))
	for i, d := range domains {
		want[i] = jar.HeaderFor(d)
	}

	restored := New()
	restored.Import(jar.Export())
	for i, d := range domains {
		require.Equal(t, want[i], restored.HeaderFor(d))
	}
}

func TestClear(t *testing.T) {
	jar := New()
	jar.Set("PHPSESSID", "abc", "openjudge.cn", "/")
	jar.Clear()

	_, ok := jar.Get("PHPSESSID")
	require.False(t, ok)
	require.Empty(t, jar.HeaderFor("openjudge.cn"))
	require.Empty(t, jar.Export())
}
