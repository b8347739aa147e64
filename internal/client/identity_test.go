package client

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func testHints() IdentityHints {
	return IdentityHints{
		LocalName:      "Alice",
		LocalAvatar:    "https://cdn.example/alice.png",
		RoomKey:        "medium",
		AIAvatarBase:   "/avatars",
		FallbackAvatar: "/avatars/default.png",
	}
}

func TestIdentityMapRegisterLocal(t *testing.T) {
	assert := assert.New(t)

	m := NewIdentityMap().RegisterLocal("sid-local", testHints())
	id := m.Resolve("sid-local")

	assert.Equal("Alice", id.DisplayName)
	assert.Equal("https://cdn.example/alice.png", id.AvatarURL)
	assert.False(id.IsAI)
}

func TestIdentityMapRegisterJoinAI(t *testing.T) {
	assert := assert.New(t)

	m := NewIdentityMap().RegisterJoin("ai_medium_7", testHints())
	id := m.Resolve("ai_medium_7")

	assert.Equal("Medium Bot", id.DisplayName)
	assert.Equal("/avatars/ai-medium.png", id.AvatarURL)
	assert.True(id.IsAI)
}

func TestIdentityMapRegisterJoinHuman(t *testing.T) {
	assert := assert.New(t)

	m := NewIdentityMap().RegisterJoin("sid-remote-9f3a", testHints())
	id := m.Resolve("sid-remote-9f3a")

	assert.Equal("Player 9f3a", id.DisplayName)
	assert.Equal("/avatars/default.png", id.AvatarURL)
	assert.False(id.IsAI)
}

func TestIdentityMapUnknownResolvesToItself(t *testing.T) {
	id := NewIdentityMap().Resolve("sid-ghost")

	assert.Equal(t, "sid-ghost", id.DisplayName)
	assert.Empty(t, id.AvatarURL, "an id is not an image URL")
	assert.False(t, id.IsAI)
}

func TestIdentityMapNeverReplaces(t *testing.T) {
	assert := assert.New(t)

	m := NewIdentityMap().RegisterLocal("sid-1", testHints())
	m = m.Register(Identity{ParticipantID: "sid-1", DisplayName: "Mallory"})
	m = m.RegisterJoin("sid-1", testHints())

	assert.Equal(1, m.Len())
	assert.Equal("Alice", m.Resolve("sid-1").DisplayName)
}

func TestIdentityMapCopyOnWrite(t *testing.T) {
	assert := assert.New(t)

	base := NewIdentityMap().RegisterLocal("sid-1", testHints())
	a := base.RegisterJoin("ai_x", testHints())
	b := base.RegisterJoin("sid-remote-bbbb", testHints())

	assert.Equal(1, base.Len())
	assert.False(base.Known("ai_x"))
	assert.True(a.Known("ai_x"))
	assert.False(a.Known("sid-remote-bbbb"))
	assert.True(b.Known("sid-remote-bbbb"))
	assert.False(b.Known("ai_x"))
}

func TestIdentityMapAllKeepsOrder(t *testing.T) {
	m := NewIdentityMap().
		RegisterLocal("sid-1", testHints()).
		RegisterJoin("ai_2", testHints()).
		RegisterJoin("sid-3333", testHints())

	var ids []string
	for _, id := range m.All() {
		ids = append(ids, id.ParticipantID)
	}
	assert.Equal(t, []string{"sid-1", "ai_2", "sid-3333"}, ids)
}

func TestHumanLabelShortID(t *testing.T) {
	assert.Equal(t, "Player ab", HumanLabel("ab"))
	assert.Equal(t, "Player 1234", HumanLabel("xyz-1234"))
}

func TestHumanLabelMultibyteID(t *testing.T) {
	label := HumanLabel("sid-玩家ßé")

	assert.Equal(t, "Player 玩家ßé", label)
	assert.True(t, utf8.ValidString(label))
}
