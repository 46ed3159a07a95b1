package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoServices = `diff -u -N /var/folders/fl/LIVE-1/v1.Service.ns.app1 /var/folders/fl/MERGED-1/v1.Service.ns.app1
--- /var/folders/fl/LIVE-1/v1.Service.ns.app1	2022-02-22 22:00:00.000000000 +0900
+++ /var/folders/fl/MERGED-1/v1.Service.ns.app1	2022-02-22 22:00:00.000000000 +0900
ABCDE
FGHIJ
diff -u -N /var/folders/fl/LIVE-1/v1.Service.ns.app2 /var/folders/fl/MERGED-1/v1.Service.ns.app2
--- /var/folders/fl/LIVE-1/v1.Service.ns.app2	2022-02-22 22:00:00.000000000 +0900
+++ /var/folders/fl/MERGED-1/v1.Service.ns.app2	2022-02-22 22:00:00.000000000 +0900
12345
67890`

func TestParse_TwoBlocks(t *testing.T) {
	cs, err := Parse(twoServices)
	require.NoError(t, err)

	assert.Equal(t, []string{"v1.Service.ns.app1", "v1.Service.ns.app2"}, cs.Keys())

	body, ok := cs.Get("v1.Service.ns.app1")
	require.True(t, ok)
	assert.Equal(t, "ABCDE\nFGHIJ", body)

	body, ok = cs.Get("v1.Service.ns.app2")
	require.True(t, ok)
	assert.Equal(t, "12345\n67890", body)
}

func TestParse_IsPure(t *testing.T) {
	first, err := Parse(twoServices)
	require.NoError(t, err)
	second, err := Parse(twoServices)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", "\n", "   \n\t\n"} {
		cs, err := Parse(input)
		require.NoError(t, err)
		assert.True(t, cs.IsEmpty())
	}
}

func TestBlocks_SourceOrder(t *testing.T) {
	input := `diff -u -N /tmp/LIVE/v1.ConfigMap.ns.zeta /tmp/MERGED/v1.ConfigMap.ns.zeta
--- /tmp/LIVE/v1.ConfigMap.ns.zeta
+++ /tmp/MERGED/v1.ConfigMap.ns.zeta
@@ -1 +1 @@
-a
+b
diff -u -N /tmp/LIVE/apps.v1.Deployment.ns.alpha /tmp/MERGED/apps.v1.Deployment.ns.alpha
--- /tmp/LIVE/apps.v1.Deployment.ns.alpha
+++ /tmp/MERGED/apps.v1.Deployment.ns.alpha
@@ -1 +1 @@
-c
+d
diff -u -N /tmp/LIVE/v1.Secret.ns.mid /tmp/MERGED/v1.Secret.ns.mid
--- /tmp/LIVE/v1.Secret.ns.mid
+++ /tmp/MERGED/v1.Secret.ns.mid
@@ -1 +1 @@
-e
+f
`
	blocks, err := Blocks(input)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, "v1.ConfigMap.ns.zeta", blocks[0].Key)
	assert.Equal(t, "apps.v1.Deployment.ns.alpha", blocks[1].Key)
	assert.Equal(t, "v1.Secret.ns.mid", blocks[2].Key)
	assert.Equal(t, "@@ -1 +1 @@\n-e\n+f", blocks[2].Body)
}

func TestBlocks_HeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"kubectl flags", "diff -u -N /tmp/LIVE-1/v1.Service.ns.app /tmp/MERGED-2/v1.Service.ns.app", "v1.Service.ns.app"},
		{"no flags", "diff /a/v1.Service.ns.app /b/v1.Service.ns.app", "v1.Service.ns.app"},
		{"single flag", "diff -u /a/v1.Pod.ns.web /b/v1.Pod.ns.web", "v1.Pod.ns.web"},
		{"crlf", "diff -u -N /a/v1.Pod.ns.web /b/v1.Pod.ns.web\r", "v1.Pod.ns.web"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := Blocks(tt.header + "\n--- a\n+++ b\n-x\n+y\n")
			require.NoError(t, err)
			require.Len(t, blocks, 1)
			assert.Equal(t, tt.want, blocks[0].Key)
		})
	}
}

func TestBlocks_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"body without header", "some text\nthat is not a diff"},
		{"header without body", "diff -u -N /a/v1.Pod.ns.web /b/v1.Pod.ns.web\n--- a\n+++ b\n"},
		{"header without path", "diff -u -N web web\n--- a\n+++ b\n-x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Blocks(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDiff))
		})
	}
}

func TestParse_DuplicateKeyLastWins(t *testing.T) {
	input := `diff -u -N /a/v1.Pod.ns.web /b/v1.Pod.ns.web
--- a
+++ b
-first
diff -u -N /a/v1.Pod.ns.api /b/v1.Pod.ns.api
--- a
+++ b
-other
diff -u -N /a/v1.Pod.ns.web /b/v1.Pod.ns.web
--- a
+++ b
-second`

	cs, err := Parse(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"v1.Pod.ns.web", "v1.Pod.ns.api"}, cs.Keys())
	body, _ := cs.Get("v1.Pod.ns.web")
	assert.Equal(t, "-second", body)
}

func TestChangeSet_KeysIsCopy(t *testing.T) {
	cs := NewChangeSet()
	cs.Set("a", "-x")

	keys := cs.Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"a"}, cs.Keys())
}
