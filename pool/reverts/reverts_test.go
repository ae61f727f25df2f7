// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRevert(t *testing.T) {
	err := Newf(NotMatured, "certificate %d matures at epoch %d", 4, 12)
	assert.Equal(t, "NotMatured: certificate 4 matures at epoch 12", err.Error())
	assert.Equal(t, "Paused", New(Paused, "").Error())

	wrapped := errors.WithMessage(err, "claim")
	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, Is(wrapped, NotMatured))
	assert.False(t, Is(wrapped, NotYetClaimable))
	assert.Equal(t, NotMatured, CodeOf(wrapped))

	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("not an error"))
	assert.False(t, IsRevertErr(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}
