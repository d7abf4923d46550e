package epub

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Write packages the publication into an EPUB container at outPath. The
// mimetype entry comes first and stored uncompressed, as the container format
// requires; chapter audio is streamed in from the extraction cache.
func Write(pub *Publication, outPath string, log *logrus.Logger) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return err
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		return err
	}

	opf, err := renderOPF(pub, time.Now())
	if err != nil {
		return err
	}

	type entry struct {
		name string
		data []byte
	}
	entries := []entry{
		{"META-INF/container.xml", []byte(containerXML)},
		{"OEBPS/content.opf", opf},
		{"OEBPS/toc.ncx", []byte(renderNCX(pub))},
		{"OEBPS/Styles/style.css", []byte(stylesheet)},
		{"OEBPS/Text/nav.xhtml", []byte(renderNav(pub))},
	}
	for _, pair := range pub.Pairs {
		entries = append(entries,
			entry{"OEBPS/Text/" + pair.XHTMLName, []byte(pair.TextDoc)},
			entry{"OEBPS/Text/" + pair.SMILName, []byte(pair.TimingDoc)},
		)
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return err
		}
		if _, err := w.Write(e.data); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}

	for i, ch := range pub.Chapters {
		log.WithFields(logrus.Fields{"chapter": ch.Index, "file": ch.Filename}).
			Debug("adding chapter audio")
		w, err := zw.Create("OEBPS/Audio/" + pub.Pairs[i].AudioFilename)
		if err != nil {
			return err
		}
		src, err := os.Open(ch.Path)
		if err != nil {
			return fmt.Errorf("open chapter audio: %w", err)
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("copy chapter audio: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize container: %w", err)
	}
	log.WithField("path", outPath).Info("publication written")
	return nil
}

// Validate runs epubcheck over the finished file when a jar is provided.
// Validation problems are logged, never fatal.
func Validate(ctx context.Context, epubPath, jarPath string, log *logrus.Logger) {
	if jarPath == "" {
		return
	}
	if _, err := os.Stat(jarPath); err != nil {
		log.WithField("jar", jarPath).Warn("epubcheck jar not found, skipping validation")
		return
	}
	if _, err := exec.LookPath("java"); err != nil {
		log.Warn("java not found, skipping epubcheck validation")
		return
	}
	cmd := exec.CommandContext(ctx, "java", "-jar", jarPath, epubPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.WithField("output", strings.TrimSpace(string(out))).Warn("epubcheck reported problems")
		return
	}
	log.Info("epubcheck validation passed")
}
