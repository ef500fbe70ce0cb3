package extract

type txtExtractor struct{}

func (txtExtractor) CanExtract(filename string) bool { return hasExt(filename, ".txt") }

func (txtExtractor) Extract(content []byte) (string, error) {
	return normalize(string(content)), nil
}
