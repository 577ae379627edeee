package roster

import (
	"ai-concierge/internal/core/chat"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notFound = "해당 학생은 등록된 명단에 없습니다"

type scriptedClient struct {
	answer       string
	err          error
	system, user string
	calls        int
}

func (c *scriptedClient) Complete(_ context.Context, system, user string) (string, error) {
	c.calls++
	c.system, c.user = system, user
	return c.answer, c.err
}

func newService(c chat.Client) *Service {
	return NewService(c, Prompts{
		System:       "system rules",
		Students:     "이름: 나철롱 | 학교: 광주서고 | 전화번호: 000-1111-1111\n",
		UserTemplate: "=== 명단 ===\n{students}\n=== 끝 ===\n질문: \"{question}\"",
		NotFound:     notFound,
	})
}

func TestAsk_ReturnsStudents(t *testing.T) {
	c := &scriptedClient{answer: `[{"name": "나철롱", "school": "광주서고", "phone": "000-1111-1111"}]`}

	out, err := newService(c).Ask(context.Background(), " 나철롱 학생 연락처 알려줘 ")

	require.NoError(t, err)
	assert.Equal(t, []Student{{Name: "나철롱", School: "광주서고", Phone: "000-1111-1111"}}, out)
	assert.Equal(t, "system rules", c.system)
	assert.Equal(t, "=== 명단 ===\n이름: 나철롱 | 학교: 광주서고 | 전화번호: 000-1111-1111\n=== 끝 ===\n질문: \"나철롱 학생 연락처 알려줘\"", c.user)
}

func TestAsk_NotFoundPhraseInText(t *testing.T) {
	c := &scriptedClient{answer: notFound + "."}

	out, err := newService(c).Ask(context.Background(), "홍길동은?")

	require.NoError(t, err)
	assert.Equal(t, []Student{{Name: notFound}}, out)
}

func TestAsk_EmptyArrayIsNotFound(t *testing.T) {
	out, err := newService(&scriptedClient{answer: "[]"}).Ask(context.Background(), "홍길동은?")

	require.NoError(t, err)
	assert.Equal(t, []Student{{Name: notFound}}, out)
}

func TestAsk_NotFoundPhraseAsRecord(t *testing.T) {
	c := &scriptedClient{answer: `[{"name": "` + notFound + `", "school": "-", "phone": "-"}]`}

	out, err := newService(c).Ask(context.Background(), "홍길동은?")

	require.NoError(t, err)
	assert.Equal(t, []Student{{Name: notFound}}, out)
}

func TestAsk_MalformedOutput(t *testing.T) {
	_, err := newService(&scriptedClient{answer: "잘 모르겠어요"}).Ask(context.Background(), "q")

	assert.ErrorIs(t, err, chat.ErrMalformedOutput)
}

func TestAsk_EmptyQuestionSkipsModel(t *testing.T) {
	c := &scriptedClient{}

	_, err := newService(c).Ask(context.Background(), "  ")

	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, c.calls)
}

func TestAsk_ProviderError(t *testing.T) {
	boom := errors.New("provider down")

	_, err := newService(&scriptedClient{err: boom}).Ask(context.Background(), "q")

	assert.ErrorIs(t, err, boom)
}
