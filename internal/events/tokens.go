package events

// SoundToken keys a scheduled audio cue. The audio engine resolves tokens to
// voices; the core never touches asset handles directly.
type SoundToken string

const (
	SoundClick            SoundToken = "click"
	SoundLever            SoundToken = "lever"
	SoundTrainApproaching SoundToken = "train_approaching"
	SoundClock            SoundToken = "clock"
	SoundHorn             SoundToken = "horn"
	SoundScream           SoundToken = "scream"
	SoundBounce           SoundToken = "bounce"
	SoundSlowMo           SoundToken = "slowmo"
	SoundSpeedUp          SoundToken = "speedup"
	SoundFastForward      SoundToken = "fast_forward"
	SoundNarration        SoundToken = "narration"
	SoundMusic            SoundToken = "music"
)

var knownTokens = map[SoundToken]struct{}{
	SoundClick:            {},
	SoundLever:            {},
	SoundTrainApproaching: {},
	SoundClock:            {},
	SoundHorn:             {},
	SoundScream:           {},
	SoundBounce:           {},
	SoundSlowMo:           {},
	SoundSpeedUp:          {},
	SoundFastForward:      {},
	SoundNarration:        {},
	SoundMusic:            {},
}

// KnownToken reports whether the token is part of the audio contract.
func KnownToken(t SoundToken) bool {
	_, ok := knownTokens[t]
	return ok
}

// PlaySound emits an audio.play event carrying the token and an optional
// asset path hint for the audio collaborator. A token outside the contract
// is logged as missing and skipped; the game keeps running silent.
func PlaySound(token SoundToken, path string) {
	fields := map[string]interface{}{"token": string(token)}
	if path != "" {
		fields["path"] = path
	}
	if !KnownToken(token) {
		Emit("warn", "audio.missing", "", fields)
		return
	}
	Emit("info", "audio.play", "", fields)
}
