package translation

import "fmt"

const promptExample = `Example:
<product>
  <name>Smart Coffee Maker</name>
  <description>Make perfect coffee with your smartphone.</description>
</product>
Translated to Traditional Chinese would be:
<product>
  <name>智慧咖啡機</name>
  <description>用你的智慧型手機沖泡完美的咖啡。</description>
</product>`

// BuildPrompt asks the model to translate only the text content of a
// structured document and hand back the complete document unwrapped.
func BuildPrompt(content, targetLanguage string) string {
	return fmt.Sprintf("Translate only the text content within the markup tags to %s. "+
		"Do not translate tag names, attribute names or attribute values. "+
		"Keep every tag, attribute, comment and the document structure exactly as it is. "+
		"Return the entire document with the translated content and nothing else: "+
		"no explanations and no Markdown code fences.\n\n"+
		"%s\n\n"+
		"Now, translate the following content:\n\n%s",
		targetLanguage, promptExample, content)
}
