package words

import (
	"encoding/csv"
	"log"
	"os"
)

// LoadCSV reads a keyword catalog file with rows of
// word,category,difficulty. Only the word column is required; invalid
// records are skipped with a log line.
func LoadCSV(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	csvReader := csv.NewReader(f)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	var list []string
	for _, record := range records {
		if len(record) < 1 || record[0] == "" {
			log.Println("[LoadCSV] skipping invalid record:", record)
			continue
		}
		list = append(list, record[0])
	}
	return list, nil
}
