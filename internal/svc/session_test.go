package svc_test

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/pmlaunch/internal/result"
	"github.com/mattjoyce/pmlaunch/internal/svc"
	"github.com/mattjoyce/pmlaunch/internal/svc/mocks"
)

func TestValidateServiceName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "pm:app"},
		{name: "12345678"},
		{name: "", wantErr: true},
		{name: "123456789", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateServiceName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, svc.ErrInvalidServiceName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAcquireRejectsLongNameWithoutKernelCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := mocks.NewMockKernel(ctrl)

	_, err := svc.Acquire(k, "pm:application")
	assert.ErrorIs(t, err, svc.ErrInvalidServiceName)
}

func TestAcquireAndCloseOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := mocks.NewMockKernel(ctrl)

	gomock.InOrder(
		k.EXPECT().StealClientSession("pm:app").Return(svc.Handle(0x15), result.Success),
		k.EXPECT().CloseHandle(svc.Handle(0x15)).Return(result.Success).Times(1),
	)

	s, err := svc.Acquire(k, "pm:app")
	require.NoError(t, err)
	assert.Equal(t, svc.Handle(0x15), s.Handle())
	assert.Equal(t, "pm:app", s.Name())

	require.NoError(t, s.Close())
	assert.Equal(t, svc.InvalidHandle, s.Handle())

	// Second close must not reach the kernel.
	require.NoError(t, s.Close())
}

func TestAcquireNoLiveSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := mocks.NewMockKernel(ctrl)

	k.EXPECT().StealClientSession("pm:app").Return(svc.InvalidHandle, result.SessionNotFound)

	s, err := svc.Acquire(k, "pm:app")
	require.Error(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, &result.Error{Code: result.SessionNotFound})
}

func TestCloseFailureIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	k := mocks.NewMockKernel(ctrl)

	k.EXPECT().StealClientSession("pm:app").Return(svc.Handle(3), result.Success)
	k.EXPECT().CloseHandle(svc.Handle(3)).Return(result.InvalidHandle)

	s, err := svc.Acquire(k, "pm:app")
	require.NoError(t, err)

	err = s.Close()
	assert.ErrorIs(t, err, &result.Error{Code: result.InvalidHandle})
	assert.Equal(t, svc.InvalidHandle, s.Handle())
	assert.NoError(t, s.Close())
}

func TestWithSessionReleasesOnEveryPath(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		k := mocks.NewMockKernel(ctrl)
		k.EXPECT().StealClientSession("pm:app").Return(svc.Handle(7), result.Success)
		k.EXPECT().CloseHandle(svc.Handle(7)).Return(result.Success)

		var seen svc.Handle
		err := svc.WithSession(k, "pm:app", func(s *svc.Session) error {
			seen = s.Handle()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, svc.Handle(7), seen)
	})

	t.Run("fn error wins over close error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		k := mocks.NewMockKernel(ctrl)
		k.EXPECT().StealClientSession("pm:app").Return(svc.Handle(7), result.Success)
		k.EXPECT().CloseHandle(svc.Handle(7)).Return(result.InvalidHandle)

		boom := errors.New("boom")
		err := svc.WithSession(k, "pm:app", func(*svc.Session) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("panic", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		k := mocks.NewMockKernel(ctrl)
		k.EXPECT().StealClientSession("pm:app").Return(svc.Handle(9), result.Success)
		k.EXPECT().CloseHandle(svc.Handle(9)).Return(result.Success)

		assert.Panics(t, func() {
			_ = svc.WithSession(k, "pm:app", func(*svc.Session) error { panic("host loop crashed") })
		})
	})

	t.Run("acquire failure skips fn", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		k := mocks.NewMockKernel(ctrl)
		k.EXPECT().StealClientSession("pm:app").Return(svc.InvalidHandle, result.SessionNotFound)

		called := false
		err := svc.WithSession(k, "pm:app", func(*svc.Session) error {
			called = true
			return nil
		})
		assert.Error(t, err)
		assert.False(t, called)
	})
}
