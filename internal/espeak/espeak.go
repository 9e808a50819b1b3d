// Package espeak speaks text locally through espeak-ng. It plays the audio
// synchronously and produces no clip file.
package espeak

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <espeak-ng/speak_lib.h>

int
espeak_say(const char *text, const char *lang)
{
	if (!text)
	{ return -1; }

	if (espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0) < 0)
	{ return -2; }
	espeak_VOICE specs = { .languages = lang };
	espeak_SetVoiceByProperties(&specs);

	espeak_Synth(text, 500, 0, 0, 0, espeakCHARS_AUTO, NULL, NULL);
	espeak_Synchronize();
	espeak_Terminate();

	return 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"voxassist/internal/tts"
)

type Engine struct {
	mu   sync.Mutex
	lang string
}

func New(lang string) *Engine {
	if lang == "" || lang == "auto" {
		lang = "en"
	}
	return &Engine{lang: lang}
}

func (e *Engine) Synthesize(ctx context.Context, text string) (*tts.Audio, error) {
	if text == "" {
		return &tts.Audio{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// espeak keeps global state
	e.mu.Lock()
	defer e.mu.Unlock()

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))
	clang := C.CString(e.lang)
	defer C.free(unsafe.Pointer(clang))

	if rc := C.espeak_say(ctext, clang); rc != 0 {
		return nil, fmt.Errorf("espeak_say failed: %d", int(rc))
	}
	return &tts.Audio{}, nil
}
