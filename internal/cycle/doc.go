// Package cycle computes 5/3/1 training cycles.
//
// A cycle is four weeks of three prescribed sets per lift, each set a
// percentage of the lift's training max rounded to a loadable plate weight.
// Generate turns a TrainingMaxSet into a CyclePlan and Advance derives the
// next cycle's training maxes from the previous ones. All arithmetic uses
// exact decimals; nothing in this package performs I/O.
package cycle
