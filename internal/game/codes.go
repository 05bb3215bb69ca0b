package game

import "math/rand"

// codeAlphabet omits lookalike letters (I, O) so codes stay easy to read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

const codeLength = 5

func newRoomCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(buf)
}
