// Package masking implements chaotic masking of a message by synchronized
// Lorenz systems.
//
// A [Transmitter] integrates the self-driven field and emits its u coordinate
// once per step, adding ε·m[k] on every ratio-th step of the message phase. A
// [Receiver] integrates the same field with the incoming signal substituted
// as the drive; its trajectory converges to the transmitter's, so the
// residual (s − u)/ε recovers the message at the sampled positions.
//
//	tx := masking.NewTransmitter(cfg)
//	signal, err := tx.Run(ctx, message)
//
//	rx := masking.NewReceiver(cfg)
//	residual, err := rx.Run(ctx, signal)
//
// Masking is not encryption in any cryptographic sense.
package masking
