package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLifecycle(t *testing.T) {
	st := NewStore()
	assert.Nil(t, st.Get(1))
	assert.Equal(t, 0, st.Len())

	s := st.Start(1, FlowBooking, "ask_name")
	require.NotNil(t, s)
	assert.Equal(t, int64(1), s.ConversationID)
	assert.Equal(t, FlowBooking, s.Flow)
	assert.Same(t, s, st.Get(1))
	assert.Equal(t, 1, st.Len())

	st.Delete(1)
	assert.Nil(t, st.Get(1))
	assert.Equal(t, 0, st.Len())
}

func TestStartReplacesActiveSession(t *testing.T) {
	st := NewStore()
	first := st.Start(1, FlowBooking, "ask_name")
	first.Name = "Maria"

	second := st.Start(1, FlowCancellation, "cancel_name")
	assert.NotSame(t, first, second)
	assert.Equal(t, FlowCancellation, second.Flow)
	assert.Empty(t, second.Name)
	assert.Equal(t, 1, st.Len())
}

func TestStoreConcurrentAccess(t *testing.T) {
	st := NewStore()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			st.Start(id, FlowBooking, "ask_name")
			st.Get(id)
			st.Delete(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, st.Len())
}
