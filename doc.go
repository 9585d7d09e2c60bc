// Package flyerpdf turns rendered flyer sections into a paginated PDF with
// working links.
//
// Each section is a fragment: a measured tree of boxes, text, images, links
// and form controls. A Generator walks the sections in order, skips the ones
// with nothing to show, rasterizes the rest, and stacks the bitmaps down
// each page with a fixed gap, starting a new page whenever a section would
// cross the bottom margin. Sections are never split. A section taller than
// a page is rasterized again at a smaller scale so it fills exactly one
// page's content area. Hyperlinks inside a section are mapped through the
// same scale and laid over the image as clickable regions.
//
// Basic usage:
//
//	gen, err := flyerpdf.New(flyerpdf.WithFileName("123-main-st.pdf"))
//	if err != nil {
//	    return err
//	}
//	res, err := gen.GenerateProperty(ctx, deal)
//	if err != nil {
//	    return err // err.Error() is the user-facing message
//	}
//	os.WriteFile(res.FileName, res.PDF, 0o644)
//
// Sub-packages:
//   - geom: page geometry and unit conversion
//   - fragment: the section content model and its JSON form
//   - classify: the emptiness rules
//   - raster: painting fragments to bitmaps and fitting them to the page
//   - layout: section placement and page breaks
//   - links: link re-projection
//   - pdfdoc: the output document
//   - flyer: builds the standard sections from a property record
//   - webhook: the HTML delivery mode
//   - inspect: reads pages and links back from a generated PDF
//   - config: YAML configuration
//   - mcp: Model Context Protocol server
package flyerpdf
