package sheets

import "fmt"

// rangeA1 диапазон вида 'Лист'!A5:AZ5 для 1-индексных координат.
func rangeA1(sheet string, row, startCol, endCol int) string {
	return fmt.Sprintf(
		"'%s'!%s%d:%s%d",
		sheet,
		colLetter(startCol), row,
		colLetter(endCol), row,
	)
}

func colLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}

	if letters == "" {
		letters = "A"
	}

	return letters
}
