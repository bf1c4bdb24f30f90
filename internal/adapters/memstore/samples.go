package memstore

import "github.com/aqwal-app/aqwal/internal/domain"

// Samples returns the built-in starter quotes used when no remote
// quote table is configured or the initial fetch comes back empty.
// IDs are stable so share and poster links keep working across
// restarts of a local-only instance.
func Samples() []domain.Quote {
	return []domain.Quote{
		{ID: "sample-1", Text: "العلم نور والجهل ظلام", Author: "مثل عربي"},
		{ID: "sample-2", Text: "الصبر مفتاح الفرج", Author: "مثل عربي"},
		{ID: "sample-3", Text: "خير الكلام ما قل ودل", Author: "مثل عربي"},
		{ID: "sample-4", Text: "الوقت كالسيف إن لم تقطعه قطعك", Author: "الإمام الشافعي"},
		{ID: "sample-5", Text: "من جد وجد ومن زرع حصد", Author: "مثل عربي"},
		{ID: "sample-6", Text: "اطلبوا العلم من المهد إلى اللحد", Author: "حكمة"},
	}
}
