package convert

import "docconv/internal/domain"

const (
	contentPDF  = "application/pdf"
	contentDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentPNG  = "image/png"
	contentJPEG = "image/jpeg"
	contentZIP  = "application/zip"
)

func operations() map[domain.ConversionType]operation {
	return map[domain.ConversionType]operation{
		domain.PDFToDocx:  {output: "docx", run: (*Service).pdfToDocx},
		domain.DocxToPDF:  {output: "pdf", run: (*Service).officeToPDF},
		domain.XlsxToPDF:  {output: "pdf", run: (*Service).officeToPDF},
		domain.PptxToPDF:  {output: "pdf", run: (*Service).officeToPDF},
		domain.HTMLToPDF:  {output: "pdf", run: (*Service).htmlToPDF},
		domain.JPGToPNG:   {output: "png", run: (*Service).toPNG},
		domain.PNGToJPG:   {output: "jpg", run: (*Service).toJPEG},
		domain.JPGToPDF:   {output: "pdf", run: (*Service).imageToPDF},
		domain.PNGToPDF:   {output: "pdf", run: (*Service).imageToPDF},
		domain.ImageToPDF: {output: "pdf", run: (*Service).imageToPDF},
		domain.ImageToTxt: {output: "text", run: (*Service).imageToText},
		domain.PDFToText:  {output: "text", run: (*Service).pdfToText},
		domain.PDFOCR:     {output: "text", run: (*Service).pdfOCR},
		domain.ImageComp:  {output: "jpg", run: (*Service).compressImage},
		domain.PDFComp:    {output: "pdf", run: (*Service).compressPDF},
		domain.PDFProtect: {output: "pdf", uncached: true, run: (*Service).protectPDF},
		domain.PDFUnlock:  {output: "pdf", uncached: true, run: (*Service).unlockPDF},
		domain.SplitPDF:   {output: "pdf|zip", run: (*Service).splitPDF},

		domain.MergePDFs:          {batch: true, output: "pdf", run: (*Service).mergePDFs},
		domain.BatchCompress:      {batch: true, output: "pdf|zip", run: (*Service).batchCompress},
		domain.BatchCompressImage: {batch: true, output: "jpg|zip", run: (*Service).batchCompressImages},
		domain.BatchConvertToPDF:  {batch: true, output: "pdf|zip", run: (*Service).batchConvertToPDF},
	}
}
