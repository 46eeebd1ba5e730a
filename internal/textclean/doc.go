// Package textclean repairs the recurring error patterns in OCR output.
//
// Cleaning runs four ordered passes: diacritics fold to their ASCII base
// form, character confusions are fixed (I' for l', intra-word 0 for o
// and 1 for l), unknown words are replaced by close vocabulary matches,
// and whitespace runs collapse. The correction vocabulary is harvested
// from the document itself (words that repeat are trusted, singletons
// are candidates) and can be extended with a user word list.
package textclean
