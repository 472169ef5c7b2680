package debate

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/krishanu7/debate-backend/internal/apperr"
)

const (
	inviteCodeLength   = 6
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// admit adds p to d, moving the debate to active when it fills up. It reports
// whether d changed; a participant joining a live debate again is a no-op.
func admit(d *Debate, p Participant, now time.Time) (bool, error) {
	if d.Status == StatusCompleted {
		return false, apperr.Conflictf("debate is already completed")
	}
	if d.HasParticipant(p.UserID) {
		return false, nil
	}
	if len(d.Participants) >= MaxParticipants {
		return false, apperr.Conflictf("debate is full")
	}
	p.JoinedAt = now
	d.Participants = append(d.Participants, p)
	if len(d.Participants) == MaxParticipants && d.Status == StatusWaiting {
		d.Status = StatusActive
		started := now
		d.StartedAt = &started
	}
	return true, nil
}

// acceptsArguments is checked again at write time since scoring can outlast a
// concurrent finalize.
func acceptsArguments(status Status) error {
	if status != StatusActive {
		return apperr.Conflictf("debate is %s, arguments are only accepted while it is active", status)
	}
	return nil
}

func generateInviteCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func normalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validInviteCode(code string) bool {
	if len(code) != inviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(inviteCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
