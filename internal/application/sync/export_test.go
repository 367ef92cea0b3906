package sync

import "time"

// SetPausa troca a função de pausa entre chunks, para os testes observarem o
// pacing sem dormir de verdade.
func (w *Writer) SetPausa(f func(time.Duration)) { w.pausa = f }
