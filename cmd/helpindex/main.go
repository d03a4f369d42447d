// helpindex CLI
// Parses B&R help content structure, maintains the search index and serves queries
package main

func main() {
	Execute()
}
