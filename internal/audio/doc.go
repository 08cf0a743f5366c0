// Package audio plays 16-bit mono PCM through the system audio device using
// oto/v3, and provides the PCM helpers the speech service needs.
package audio
