// Package panel provides person-level ("wide") and person-period ("long")
// tables for longitudinal data.
//
// A Table is keyed by a string id column; every other column is numeric.
// The same type represents both layouts: a wide table has one value column
// per measurement occasion, a long table has one row per (id, time) pair.
//
// # Loading Data
//
// Load a table from a file or URL:
//
//	wide, err := panel.Load(ctx, "tolerance.csv", nil)
//
//	// Custom id column and delimiter
//	opts := panel.DefaultCSVOptions()
//	opts.IDColumn = "subject"
//	opts.Delimiter = ';'
//	wide, err := panel.LoadCSV("data.csv", opts)
//
// # Reshaping
//
// Convert tol11..tol15 into a person-period table with an age column:
//
//	pattern := panel.ColumnPattern{Prefix: "tol"}
//	long, err := panel.ToLong(wide, panel.LongSpec{
//	    IDColumn:     "id",
//	    FixedColumns: []string{"male", "exposure"},
//	    Pattern:      pattern,
//	    TimeColumn:   "age",
//	    ValueColumn:  "tolerance",
//	})
//
// Setting Pattern.TimeBase to 11 yields time 0..4 instead of ages 11..15.
//
// And back:
//
//	wide, err = panel.ToWide(long, panel.WideSpec{
//	    IDColumn:    "id",
//	    TimeColumn:  "age",
//	    ValueColumn: "tolerance",
//	    Pattern:     pattern,
//	})
//
// ToWide(ToLong(w)) reproduces w up to column order.
//
// # Derived Columns
//
//	centred, err := long.Center("exposure", "exposure_c")
//	time := long.WithColumn("time", func(_ string, row []float64) float64 {
//	    return row[long.Index("age")] - 11
//	})
package panel
