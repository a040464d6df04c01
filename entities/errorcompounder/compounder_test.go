//               _
// __   __  ___ | |  ___    __ _   ___  _ __
// \ \ / / / _ \| | / _ \  / _` | / _ \| '_ \
//  \ V / |  __/| || (_) || (_| ||  __/| | | |
//   \_/   \___||_| \___/  \__, | \___||_| |_|
//                         |___/
//
//  Copyright © 2019 - 2026 Velogen Labs. All rights reserved.
//
//  CONTACT: hello@velogen.io
//

package errorcompounder

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompounder(t *testing.T) {
	t.Run("no errors added", func(t *testing.T) {
		ec := New()
		assert.True(t, ec.Empty())
		assert.Equal(t, 0, ec.Len())
		assert.NoError(t, ec.ToError())
		assert.NoError(t, ec.First())
	})

	t.Run("nil errors are ignored", func(t *testing.T) {
		ec := New()
		ec.Add(nil)
		ec.AddWrapf(nil, "close file %d", 7)
		assert.True(t, ec.Empty())
		assert.NoError(t, ec.ToError())
	})

	t.Run("single error", func(t *testing.T) {
		ec := New()
		ec.Add(errors.New("unmap failed"))
		require.False(t, ec.Empty())
		assert.Equal(t, 1, ec.Len())
		assert.EqualError(t, ec.ToError(), "unmap failed")
		assert.EqualError(t, ec.First(), "unmap failed")
	})

	t.Run("multiple errors are joined in order", func(t *testing.T) {
		ec := New()
		ec.Add(errors.New("unmap failed"))
		ec.Addf("close file %d", 3)
		ec.AddWrapf(errors.New("disk full"), "flush file %d", 4)
		assert.Equal(t, 3, ec.Len())
		assert.EqualError(t, ec.ToError(),
			"unmap failed, close file 3, flush file 4: disk full")
		assert.EqualError(t, ec.First(), "unmap failed")
	})
}
