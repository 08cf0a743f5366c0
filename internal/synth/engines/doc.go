// Package engines provides speech synthesis engines: Piper for offline
// neural voices, gTTS for Google Translate voices and a silent mock.
package engines
