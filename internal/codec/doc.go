// Package codec reads and writes structured content: a metadata header
// between two "---" lines followed by a markdown body.
//
//	---
//	{
//	  "shortBio": "dev"
//	}
//	---
//	Hello world
//
// New content is always written with a single notation (JSON by default).
// Reading walks an ordered chain of header parsers so content written by
// older, looser writers (YAML headers, TOML "+++" blocks, ";;;" JSON blocks)
// still splits correctly. Decode never fails: schema mismatches and
// unreadable headers resolve to a default or an empty fallback value.
package codec
