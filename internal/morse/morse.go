// Package morse emits messages in Morse code by toggling an output on and
// off. Each character is compiled into a bit queue, LSB first, where a set
// bit is one "dit" interval of light: a dit is a single set bit, a dah is
// three. Symbols are separated by one blank, letters by three, words by
// seven.
package morse

import (
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"
)

// DefaultIntervalMs is the dit duration used when a request does not set one.
const DefaultIntervalMs uint32 = 60

// patterns holds the dit/dah sequences for the supported characters.
var patterns = map[byte]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	'?': "..--..", '@': ".--.-.",
}

type symbol struct {
	bits    uint32
	numBits uint8
}

var encodings = make(map[byte]symbol, len(patterns))

func init() {
	for c, p := range patterns {
		encodings[c] = compile(p)
	}
}

// compile turns a dit/dah string into a bit queue. The two low blanks plus
// the trailing blank of the previous symbol form the three-dit letter gap.
func compile(p string) symbol {
	s := symbol{numBits: 2}
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '.':
			s.bits |= 1 << s.numBits
			s.numBits += 2
		case '-':
			s.bits |= 0x7 << s.numBits
			s.numBits += 4
		}
	}
	return s
}

// Pattern renders msg as dits and dahs, letters separated by spaces and
// words by " / ". Characters without an encoding render as '?'.
func Pattern(msg string) string {
	var b strings.Builder
	pending := false
	for _, word := range strings.Fields(strings.ToUpper(msg)) {
		if pending {
			b.WriteString(" / ")
		}
		for i := 0; i < len(word); i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			p, ok := patterns[word[i]]
			if !ok {
				p = patterns['?']
			}
			b.WriteString(p)
		}
		pending = true
	}
	return b.String()
}

// OutputFunc receives every edge the encoder produces. turnOn is the new
// output level; patternFinished is true on the final call of a message.
type OutputFunc func(turnOn, patternFinished bool)

// Encoder drives an OutputFunc through the Morse pattern of a message.
// Encode replaces any message in progress. All timing runs on a single
// rescheduling timer; coalesced blanks become one longer wait.
type Encoder struct {
	logger *slog.Logger
	output OutputFunc

	mu        sync.Mutex
	gen       uint64
	timer     *time.Timer
	isOn      bool
	msg       string
	msgOffset int
	repeat    uint32
	interval  time.Duration
	bits      uint32
	numBits   uint8
}

// NewEncoder creates an idle Encoder writing edges to output.
func NewEncoder(output OutputFunc, logger *slog.Logger) *Encoder {
	return &Encoder{logger: logger, output: output}
}

// Encode starts emitting msg, repeating it repeat times. A repeat of zero
// repeats until the next Encode or Stop. Any message in progress is
// cancelled first and the output is driven low.
func (e *Encoder) Encode(msg string, repeat uint32, intervalMs uint32) {
	if intervalMs == 0 {
		intervalMs = DefaultIntervalMs
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	if strings.TrimSpace(msg) == "" {
		e.logger.Warn("Ignoring empty Morse message")
		e.output(false, true)
		return
	}
	if repeat == 0 {
		e.logger.Info("Encoding message forever", "interval_ms", intervalMs)
		repeat = math.MaxUint32
	} else {
		e.logger.Info("Encoding message", "repeat", repeat, "interval_ms", intervalMs)
	}
	e.msg = msg
	e.msgOffset = 0
	e.repeat = repeat
	e.interval = time.Duration(intervalMs) * time.Millisecond
	e.output(false, false)
	e.scheduleLocked()
}

// Stop cancels any message in progress and drives the output low.
func (e *Encoder) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idleLocked() {
		return
	}
	e.cancelLocked()
	e.output(false, false)
}

// IsIdle reports whether the encoder has finished its message.
func (e *Encoder) IsIdle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idleLocked()
}

func (e *Encoder) idleLocked() bool {
	return e.repeat == 0 && e.msgOffset == len(e.msg) && e.numBits == 0
}

// cancelLocked invalidates the pending timer and resets the queue.
func (e *Encoder) cancelLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.isOn = false
	e.msg = ""
	e.msgOffset = 0
	e.repeat = 0
	e.bits = 0
	e.numBits = 0
}

// scheduleLocked consumes queued bits that match the current output level,
// accumulating their intervals, and arms the timer for the next edge. When
// the queue and message are exhausted it signals pattern completion.
func (e *Encoder) scheduleLocked() {
	var interval time.Duration
	for {
		if e.numBits == 0 && !e.enqueueNextLocked() {
			e.output(false, true)
			return
		}
		wantOn := e.bits&1 != 0
		if wantOn != e.isOn {
			break
		}
		e.bits >>= 1
		e.numBits--
		interval += e.interval
	}

	gen := e.gen
	e.timer = time.AfterFunc(interval, func() { e.toggle(gen) })
}

// toggle flips the output level and schedules the next edge. A stale
// generation means Encode or Stop replaced this timer.
func (e *Encoder) toggle(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}
	e.isOn = !e.isOn
	e.output(e.isOn, false)
	e.scheduleLocked()
}

// enqueueNextLocked compiles the next message character into the bit queue.
// It returns false when the message and all repeats are exhausted.
func (e *Encoder) enqueueNextLocked() bool {
	e.bits = 0
	e.numBits = 0

	var c byte
	needsWordBreak := false
	for {
		if e.msgOffset == len(e.msg) {
			e.repeat--
			if e.repeat == 0 {
				return false
			}
			needsWordBreak = true
			e.msgOffset = 0
		}
		c = e.msg[e.msgOffset]
		e.msgOffset++
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			break
		}
		needsWordBreak = true
	}

	if needsWordBreak {
		// Words get 7 blanks. The previous symbol ended with 3, add 4 more.
		e.numBits += 4
	}

	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	enc, ok := encodings[c]
	if !ok {
		enc = encodings['?']
	}
	e.bits |= enc.bits << e.numBits
	e.numBits += enc.numBits
	return true
}
