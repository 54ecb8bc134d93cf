package typing

// DefaultChunkSize 长文本分块的默认字符数
//
// 分块按字符（rune）计数而不是字节，避免把多字节字符切断。
const DefaultChunkSize = 200

// SplitChunks 把文本切分为固定大小的字符块
//
// 最后一块可能小于 chunkSize。空文本返回空切片。
// chunkSize 小于等于 0 时按默认值处理。
//
// Parameters:
//   - text: 要切分的文本
//   - chunkSize: 每块的最大字符数
//
// Returns: [][]rune - 切分出的字符块
func SplitChunks(text string, chunkSize int) [][]rune {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	chunks := make([][]rune, 0, (len(runes)+chunkSize-1)/chunkSize)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, runes[start:end])
	}
	return chunks
}
