// Package jar holds a module container in memory.
//
// Entries keep their archive order and modification times. Reading and
// writing go through github.com/mholt/archives; Write replaces the
// destination only after the whole archive has been produced.
package jar
