package hotel

import (
	"ai-concierge/internal/core/vectorstore"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	hits []vectorstore.Hit
	err  error
}

func (f fakeSearcher) Search(context.Context, string) ([]vectorstore.Hit, error) {
	return f.hits, f.err
}

type recordingClient struct {
	answer string
	err    error
	user   string
	calls  int
}

func (c *recordingClient) Complete(_ context.Context, _ string, user string) (string, error) {
	c.calls++
	c.user = user
	return c.answer, c.err
}

var testPrompts = Prompts{
	Template: "컨텍스트\n{context}\n\n질문\n{ask}",
	Fallback: "모르겠습니다.",
}

func TestAsk_NoHitsReturnsFallbackWithoutModel(t *testing.T) {
	c := &recordingClient{answer: "should not be used"}

	out, err := NewService(fakeSearcher{}, c, testPrompts).Ask(context.Background(), "주차 요금은?")

	require.NoError(t, err)
	assert.Equal(t, "모르겠습니다.", out)
	assert.Zero(t, c.calls)
}

func TestAsk_RendersContextInRetrievalOrder(t *testing.T) {
	s := fakeSearcher{hits: []vectorstore.Hit{
		{Score: 0.92, Content: "체크인은 오후 3시부터입니다."},
		{Score: 0.61, Content: "체크아웃은 오전 11시입니다."},
	}}
	c := &recordingClient{answer: " 체크인은 오후 3시부터입니다. \n"}

	out, err := NewService(s, c, testPrompts).Ask(context.Background(), "체크인 시간은?")

	require.NoError(t, err)
	assert.Equal(t, "체크인은 오후 3시부터입니다.", out)
	assert.Equal(t, "컨텍스트\n[1] 체크인은 오후 3시부터입니다.\n\n[2] 체크아웃은 오전 11시입니다.\n\n질문\n체크인 시간은?", c.user)
}

func TestAsk_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewService(fakeSearcher{err: boom}, &recordingClient{}, testPrompts).Ask(context.Background(), "q")
	assert.ErrorIs(t, err, boom)

	hit := fakeSearcher{hits: []vectorstore.Hit{{Content: "x"}}}
	_, err = NewService(hit, &recordingClient{err: boom}, testPrompts).Ask(context.Background(), "q")
	assert.ErrorIs(t, err, boom)

	_, err = NewService(hit, &recordingClient{}, testPrompts).Ask(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}
