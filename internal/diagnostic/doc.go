// Package diagnostic provides structured errors, warnings and notes produced while
// building and executing type maps and while validating mapping files.
//
// Key capabilities:
//   - Unmapped destination reports with ranked suggestions
//   - Ambiguous match reports naming the competing sources
//   - Collected execution errors joined into one error
package diagnostic
