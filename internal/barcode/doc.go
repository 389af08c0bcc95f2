// Package barcode turns a sample index table into the lookup used to route reads.
//
// A table row is either "label<TAB>i7<TAB>i5" or "label<TAB>sequence". Barcodes are cut to
// MaxLen characters. When both indices are selected the lookup key is i5 + Separator + i7,
// otherwise it is the selected barcode alone. Two-field rows always use their sequence as the
// key, whatever the selector says.
package barcode
