package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBattleSubject(t *testing.T) {
	assert.Equal(t, "arena.battle.b1", BattleSubject("b1"))
	assert.Equal(t, "arena.battle.>", AllBattlesSubject)
}

func TestPublisher_NoConnDegrades(t *testing.T) {
	var nilPublisher *Publisher
	assert.NoError(t, nilPublisher.Publish(context.Background(), "x", map[string]string{"a": "b"}))

	p := NewPublisher(nil, nil)
	assert.NoError(t, p.Publish(context.Background(), BattleSubject("b1"), struct{}{}))
}
