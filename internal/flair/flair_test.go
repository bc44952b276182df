package flair

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// scripted replays a fixed sequence of picks.
type scripted struct {
	picks []int
}

func (s *scripted) IntN(n int) int {
	v := s.picks[0] % n
	s.picks = s.picks[1:]
	return v
}

func TestNickname(t *testing.T) {
	assert.Equal(t, "Slick Paulie", Nickname("Paulie Walnuts", &scripted{picks: []int{0, 2}}))
	assert.Equal(t, "Paulie 'The Ghost'", Nickname("Paulie Walnuts", &scripted{picks: []int{1, 4}}))
	assert.Equal(t, "Big Furio", Nickname("Furio", &scripted{picks: []int{0, 0}}))
}

func TestNicknameRandom(t *testing.T) {
	rng := NewPicker()
	for i := 0; i < 50; i++ {
		nick := Nickname("Silvio Dante", rng)
		assert.Contains(t, nick, "Silvio")
		assert.NotContains(t, nick, "Dante")
	}
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$0", Currency(0))
	assert.Equal(t, "$999", Currency(999))
	assert.Equal(t, "$1.0K", Currency(1000))
	assert.Equal(t, "$12.3K", Currency(12_345))
	assert.Equal(t, "$1.5M", Currency(1_500_000))
	assert.Equal(t, "$-50", Currency(-50))
}

func TestGrouped(t *testing.T) {
	assert.Equal(t, "$1,234,567", Grouped(1_234_567))
	assert.Equal(t, "$950", Grouped(950))
}
