package epub

import (
	"fmt"
	"html"
	"strings"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
    <rootfiles>
        <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
    </rootfiles>
</container>
`

const stylesheet = `/* EPUB media overlay styles */

body {
    font-family: serif;
    line-height: 1.5;
    margin: 2em;
}

h1, h2, h3 {
    color: #333;
    margin-top: 1.5em;
    margin-bottom: 0.5em;
}

.chapter-title {
    font-size: 1.5em;
    font-weight: bold;
    margin-bottom: 1em;
}

.playing {
    background-color: yellow;
}
`

// renderNCX builds the NCX navigation map for EPUB 2 reading systems.
func renderNCX(pub *Publication) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<ncx xmlns=\"http://www.daisy.org/z3986/2005/ncx/\" version=\"2005-1\">\n")
	b.WriteString("    <head>\n")
	fmt.Fprintf(&b, "        <meta name=\"dtb:uid\" content=\"urn:uuid:%s\"/>\n", pub.ID)
	b.WriteString("        <meta name=\"dtb:depth\" content=\"1\"/>\n")
	b.WriteString("        <meta name=\"dtb:totalPageCount\" content=\"0\"/>\n")
	b.WriteString("        <meta name=\"dtb:maxPageNumber\" content=\"0\"/>\n")
	b.WriteString("    </head>\n")
	fmt.Fprintf(&b, "    <docTitle>\n        <text>%s</text>\n    </docTitle>\n", html.EscapeString(pub.Title))
	b.WriteString("    <navMap>\n")
	for i, pair := range pub.Pairs {
		n := i + 1
		fmt.Fprintf(&b, "        <navPoint id=\"navpoint-%d\" playOrder=\"%d\">\n", n, n)
		fmt.Fprintf(&b, "            <navLabel>\n                <text>%s</text>\n            </navLabel>\n",
			html.EscapeString(pair.Title))
		fmt.Fprintf(&b, "            <content src=\"Text/%s\"/>\n", pair.XHTMLName)
		b.WriteString("        </navPoint>\n")
	}
	b.WriteString("    </navMap>\n</ncx>\n")
	return b.String()
}

// renderNav builds the EPUB 3 navigation document.
func renderNav(pub *Publication) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\" lang=\"en\" xml:lang=\"en\">\n")
	b.WriteString("<head>\n    <title>Navigation</title>\n")
	b.WriteString("    <link rel=\"stylesheet\" href=\"../Styles/style.css\" type=\"text/css\"/>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString("    <nav epub:type=\"toc\" id=\"toc\">\n")
	b.WriteString("        <h1>Table of Contents</h1>\n        <ol>\n")
	for _, pair := range pub.Pairs {
		fmt.Fprintf(&b, "            <li><a href=\"%s\">%s</a></li>\n",
			pair.XHTMLName, html.EscapeString(pair.Title))
	}
	b.WriteString("        </ol>\n    </nav>\n</body>\n</html>\n")
	return b.String()
}
