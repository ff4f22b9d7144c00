package kcommon

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/kerror"
	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
)

func TestTryCatchRun_RuntimeError(t *testing.T) {
	ctx := context.Background()
	div := func(x int, y int) int {
		return x / y
	}
	ke := TryCatchRun(ctx, func() {
		div(1, 0)
	})
	assert.NotNil(t, ke)
	assert.NotEqual(t, "", ke.Stack)
	assert.Equal(t, kerror.EC_INTERNAL_ERROR, ke.ErrorCode)

	logEntry := klogging.Warning(ctx).WithError(ke)
	_, ok := logEntry.GetDetail("causedBy")
	assert.True(t, ok)
}

func TestTryCatchRun_Kerror(t *testing.T) {
	orig := kerror.Create("BadScope", "index out of range").WithErrorCode(kerror.EC_INVALID_PARAMETER)
	ke := TryCatchRun(context.Background(), func() {
		panic(orig)
	})
	assert.Same(t, orig, ke)
}

func TestTryCatchRun_NonError(t *testing.T) {
	klogging.SetDefaultLogger(klogging.NewNullLogger())
	defer klogging.SetDefaultLogger(&klogging.BasicLogger{LogLevel: klogging.DebugLevel})
	ke := TryCatchRun(context.Background(), func() {
		panic("boom")
	})
	assert.NotNil(t, ke)
	assert.Equal(t, "NonErrorPanic", ke.Type)
	assert.Equal(t, "boom", ke.Msg)
}

func TestTryCatchRun_NoPanic(t *testing.T) {
	assert.Nil(t, TryCatchRun(context.Background(), func() {}))
}

func TestGetEnv(t *testing.T) {
	os.Setenv("KCOMMON_TEST_INT", "42")
	os.Setenv("KCOMMON_TEST_BAD", "x")
	defer os.Unsetenv("KCOMMON_TEST_INT")
	defer os.Unsetenv("KCOMMON_TEST_BAD")
	assert.Equal(t, 42, GetEnvInt("KCOMMON_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("KCOMMON_TEST_BAD", 1))
	assert.Equal(t, "d", GetEnvString("KCOMMON_TEST_MISSING", "d"))
}

func TestSeededRandRepeatable(t *testing.T) {
	a := NewSeededRand(7)
	b := NewSeededRand(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Intn(100), b.Intn(100))
	}
	assert.NotEqual(t, int64(0), CryptoSeed(context.Background()))
	assert.Equal(t, 8, len(RandomString(context.Background(), 8)))
}
