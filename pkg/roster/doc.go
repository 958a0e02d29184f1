// Package roster holds the recipient list of a bulk send and parses it from uploaded spreadsheets.
//
// A Store is loaded in bulk from parsed rows. Every recipient starts pending and is
// moved to sent or failed exactly once per run by the campaign processor. Status
// updates are keyed by row index, so duplicate addresses are tracked independently:
//
//	rows, err := roster.Parse(file, header.Filename)
//	if err != nil {
//		return err
//	}
//	store := roster.NewStore(rows...)
//	_ = store.UpdateStatus(0, roster.StatusSent, nil)
//
// Parse reads the first sheet of an .xlsx workbook or a .csv file. The first row holds
// the headers; "name" and "email" columns are matched case-insensitively.
package roster
